// Package source loads bean definitions from YAML descriptors. It is one
// concrete DefinitionSource; the container core never depends on it.
package source

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-beans/framework/beans"
)

// Document is the root of a YAML descriptor.
type Document struct {
	Beans []BeanSpec `yaml:"beans" validate:"dive"`
}

// BeanSpec is one declarative bean entry.
type BeanSpec struct {
	Name          string `yaml:"name"`
	Class         string `yaml:"class" validate:"required_without_all=Parent FactoryBean"`
	Parent        string `yaml:"parent"`
	FactoryBean   string `yaml:"factory-bean"`
	FactoryMethod string `yaml:"factory-method"`

	Scope    string `yaml:"scope"`
	Lazy     bool   `yaml:"lazy"`
	Autowire string `yaml:"autowire" validate:"omitempty,oneof=no by-name by-type constructor auto-detect"`
	Primary  bool   `yaml:"primary"`
	Role     string `yaml:"role" validate:"omitempty,oneof=application infrastructure"`

	DependsOn     []string `yaml:"depends-on"`
	InitMethod    string   `yaml:"init-method"`
	DestroyMethod string   `yaml:"destroy-method"`

	Constructor []ArgSpec            `yaml:"constructor" validate:"dive"`
	Properties  map[string]ValueSpec `yaml:"properties"`
	Qualifiers  []QualifierSpec      `yaml:"qualifiers"`
	Aliases     []string             `yaml:"aliases"`
}

// ValueSpec is a property or argument value. A bare scalar in the YAML is
// shorthand for a literal; otherwise exactly one of the keys is used.
type ValueSpec struct {
	Value any         `yaml:"value"`
	Ref   string      `yaml:"ref"`
	Bean  *BeanSpec   `yaml:"bean"`
	List  []ValueSpec `yaml:"list"`

	scalar bool
}

// UnmarshalYAML accepts either a scalar literal or the mapping form.
func (v *ValueSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v.scalar = true
		return node.Decode(&v.Value)
	}
	type plain ValueSpec
	return node.Decode((*plain)(v))
}

func (v *ValueSpec) empty() bool {
	return !v.scalar && v.Value == nil && v.Ref == "" && v.Bean == nil && v.List == nil
}

// ArgSpec is a constructor argument; omit Index for a generic (type-matched)
// argument. A name with no value references the bean of that name.
type ArgSpec struct {
	Index *int      `yaml:"index"`
	Name  string    `yaml:"name"`
	Value ValueSpec `yaml:"value"`
}

// QualifierSpec narrows autowire candidate matching.
type QualifierSpec struct {
	Type  string            `yaml:"type" validate:"required"`
	Attrs map[string]string `yaml:"attrs"`
}

// ── Source ────────────────────────────────────────────────────────────────────

// YAML is a DefinitionSource reading Document descriptors.
type YAML struct {
	validate *validator.Validate
}

// New creates a YAML definition source.
func New() *YAML {
	return &YAML{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Load implements beans.DefinitionSource. The descriptor may be a []byte,
// string, or io.Reader holding a YAML document.
func (s *YAML) Load(descriptor any) ([]beans.NamedDefinition, error) {
	data, err := readDescriptor(descriptor)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: invalid yaml: %w", err)
	}
	if err := s.validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("source: invalid descriptor: %w", err)
	}

	out := make([]beans.NamedDefinition, 0, len(doc.Beans))
	for i := range doc.Beans {
		spec := &doc.Beans[i]
		def, err := s.definition(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, beans.NamedDefinition{
			Name:       spec.Name,
			Aliases:    append([]string(nil), spec.Aliases...),
			Definition: def,
		})
	}
	return out, nil
}

func (s *YAML) definition(spec *BeanSpec) (*beans.Definition, error) {
	def := &beans.Definition{
		ClassName:     spec.Class,
		FactoryBean:   spec.FactoryBean,
		FactoryMethod: spec.FactoryMethod,
		Parent:        spec.Parent,
		Scope:         beans.Scope(spec.Scope),
		LazyInit:      spec.Lazy,
		Primary:       spec.Primary,
		DependsOn:     append([]string(nil), spec.DependsOn...),
		InitMethod:    spec.InitMethod,
		DestroyMethod: spec.DestroyMethod,
	}

	switch spec.Autowire {
	case "", "no":
		def.Autowire = beans.AutowireNone
	case "by-name":
		def.Autowire = beans.AutowireByName
	case "by-type":
		def.Autowire = beans.AutowireByType
	case "constructor":
		def.Autowire = beans.AutowireConstructor
	case "auto-detect":
		def.Autowire = beans.AutowireAutoDetect
	}
	if spec.Role == "infrastructure" {
		def.Role = beans.RoleInfrastructure
	}

	for _, arg := range spec.Constructor {
		var v beans.Value
		if !arg.Value.empty() {
			var err error
			if v, err = s.value(&arg.Value); err != nil {
				return nil, err
			}
		}
		idx := -1
		if arg.Index != nil {
			idx = *arg.Index
		}
		def.ConstructorArgs = append(def.ConstructorArgs,
			beans.ConstructorArg{Index: idx, Name: arg.Name, Value: v})
	}

	// Map iteration order is random; sort property names so registration
	// stays reproducible.
	props := make([]string, 0, len(spec.Properties))
	for name := range spec.Properties {
		props = append(props, name)
	}
	sort.Strings(props)
	for _, name := range props {
		vs := spec.Properties[name]
		v, err := s.value(&vs)
		if err != nil {
			return nil, err
		}
		def.SetProperty(name, v)
	}

	for _, q := range spec.Qualifiers {
		attrs := make(map[string]string, len(q.Attrs))
		for k, v := range q.Attrs {
			attrs[k] = v
		}
		def.Qualifiers = append(def.Qualifiers, beans.Qualifier{Type: q.Type, Attrs: attrs})
	}
	return def, nil
}

func (s *YAML) value(vs *ValueSpec) (beans.Value, error) {
	switch {
	case vs.scalar:
		return beans.Literal{Raw: vs.Value}, nil
	case vs.Ref != "":
		return beans.Ref{Name: vs.Ref}, nil
	case vs.Bean != nil:
		if err := s.validate.Struct(vs.Bean); err != nil {
			return nil, fmt.Errorf("source: invalid nested bean: %w", err)
		}
		def, err := s.definition(vs.Bean)
		if err != nil {
			return nil, err
		}
		return beans.Inner{Def: def}, nil
	case vs.List != nil:
		elems := make([]beans.Value, 0, len(vs.List))
		for i := range vs.List {
			ev, err := s.value(&vs.List[i])
			if err != nil {
				return nil, err
			}
			elems = append(elems, ev)
		}
		return beans.List{Elems: elems}, nil
	default:
		return beans.Literal{Raw: vs.Value}, nil
	}
}

func readDescriptor(descriptor any) ([]byte, error) {
	switch d := descriptor.(type) {
	case []byte:
		return d, nil
	case string:
		return []byte(d), nil
	case io.Reader:
		return io.ReadAll(d)
	default:
		return nil, fmt.Errorf("source: unsupported descriptor %T", descriptor)
	}
}
