package app_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/beans"
)

type widgetProvider struct {
	app.BaseProvider
	registered int
}

func (p *widgetProvider) Register(a *app.Application) error {
	p.registered++
	if err := a.Types.RegisterType("app.Widget", &Widget{}); err != nil {
		return err
	}
	def := beans.NewDefinition("app.Widget")
	def.SetProperty("label", beans.Literal{Raw: "provided"})
	return a.Register("widget", def)
}

type bootingProvider struct {
	label string
	order *[]string
}

func (p *bootingProvider) Register(a *app.Application) error {
	*p.order = append(*p.order, "register:"+p.label)
	return nil
}

func (p *bootingProvider) Boot(a *app.Application) error {
	*p.order = append(*p.order, "boot:"+p.label)
	return nil
}

type failingProvider struct {
	app.BaseProvider
	err error
}

func (p *failingProvider) Register(*app.Application) error { return p.err }

func TestRegisterProvider(t *testing.T) {
	a := newTestApp(t)
	p := &widgetProvider{}

	require.NoError(t, a.RegisterProvider(p))
	require.NoError(t, a.Bootstrap())

	inst, err := a.GetBean("widget")
	require.NoError(t, err)
	assert.Equal(t, "provided", inst.(*Widget).Label)
}

func TestRegisterProvider_Idempotent(t *testing.T) {
	a := newTestApp(t)
	p := &widgetProvider{}

	require.NoError(t, a.RegisterProvider(p))
	require.NoError(t, a.RegisterProvider(p))
	assert.Equal(t, 1, p.registered, "a provider registers at most once")
}

func TestRegisterProvider_BootOrder(t *testing.T) {
	a := newTestApp(t)
	var order []string

	require.NoError(t, a.RegisterProvider(&bootingProvider{label: "first", order: &order}))
	require.NoError(t, a.RegisterProvider(&bootingProvider{label: "second", order: &order}))

	// Boot runs only after every provider registered, in registration order.
	assert.Equal(t, []string{"register:first", "register:second"}, order)

	require.NoError(t, a.Bootstrap())
	assert.Equal(t, []string{
		"register:first", "register:second",
		"boot:first", "boot:second",
	}, order)
}

func TestRegisterProvider_AfterBootstrapBootsImmediately(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Bootstrap())

	var order []string
	require.NoError(t, a.RegisterProvider(&bootingProvider{label: "late", order: &order}))
	assert.Equal(t, []string{"register:late", "boot:late"}, order)
}

func TestRegisterProvider_Failure(t *testing.T) {
	a := newTestApp(t)
	boom := errors.New("binding failed")

	err := a.RegisterProvider(&failingProvider{err: boom})
	assert.ErrorIs(t, err, boom)
}
