package main

import (
	"fmt"
	"log"

	"github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/beans"
	"github.com/km-arc/go-beans/framework/source"
)

// Demo domain: a greeting service wired from a YAML descriptor.

type MessageStore struct {
	Prefix string
}

func (s *MessageStore) Message(name string) string {
	return s.Prefix + ", " + name + "!"
}

type Greeter struct {
	Store   *MessageStore
	Repeats int
}

func (g *Greeter) Greet(name string) string {
	out := ""
	for i := 0; i < g.Repeats; i++ {
		out += g.Store.Message(name) + " "
	}
	return out
}

const descriptor = `
beans:
  - name: store
    class: demo.MessageStore
    properties:
      prefix: Hello

  - name: greeter
    class: demo.Greeter
    aliases: [welcomer]
    properties:
      repeats: 2
      store: {ref: store}
`

func main() {
	application := app.New() // loads .env automatically

	must(application.Types.RegisterType("demo.MessageStore", (*MessageStore)(nil)))
	must(application.Types.RegisterType("demo.Greeter", (*Greeter)(nil)))

	must(application.Load(source.New(), descriptor))
	must(application.Bootstrap())
	defer application.Close()

	greeter := beans.MustResolve[*Greeter](application.Factory, "welcomer")
	fmt.Println(greeter.Greet("world"))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
