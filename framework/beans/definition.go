package beans

// ── Scopes ────────────────────────────────────────────────────────────────────

// Scope controls how many instances the container produces for a definition.
type Scope string

const (
	// ScopeSingleton — one shared instance per container.
	ScopeSingleton Scope = "singleton"
	// ScopePrototype — a fresh instance on every request, never cached.
	ScopePrototype Scope = "prototype"
)

// ── Autowire modes ────────────────────────────────────────────────────────────

// AutowireMode selects how unresolved dependencies of a bean are located.
type AutowireMode int

const (
	// AutowireNone — only explicit property values and constructor args.
	AutowireNone AutowireMode = iota
	// AutowireByName — match settable fields against bean names.
	AutowireByName
	// AutowireByType — match settable fields against candidate bean types.
	AutowireByType
	// AutowireConstructor — resolve constructor parameters by type.
	AutowireConstructor
	// AutowireAutoDetect — constructor when one is registered, by-type otherwise.
	AutowireAutoDetect
)

// ── Roles ─────────────────────────────────────────────────────────────────────

// Role classifies a definition as user-facing or container plumbing.
//
//	// Spring: BeanDefinition.ROLE_APPLICATION / ROLE_INFRASTRUCTURE
type Role int

const (
	RoleApplication Role = iota
	RoleInfrastructure
)

// ── Values ────────────────────────────────────────────────────────────────────

// Value is a declarative property or constructor-argument value.
// Exactly one of the concrete variants below is used per value.
type Value interface{ value() }

// Literal holds a raw value converted to the target type on injection.
type Literal struct{ Raw any }

// Ref points at another bean by name (aliases allowed).
type Ref struct{ Name string }

// Inner nests an anonymous definition; the instance is created on demand
// and never registered or cached.
type Inner struct{ Def *Definition }

// List holds an ordered collection of values injected as a slice.
type List struct{ Elems []Value }

func (Literal) value() {}
func (Ref) value()     {}
func (Inner) value()   {}
func (List) value()    {}

// PropertyValue is a named value applied during property population.
type PropertyValue struct {
	Name  string
	Value Value
}

// ConstructorArg is a constructor-argument value. Index < 0 marks a generic
// argument matched by type; Name, when set, resolves against a bean name.
type ConstructorArg struct {
	Index int
	Name  string
	Value Value
}

// Qualifier narrows autowire candidates beyond plain type matching.
type Qualifier struct {
	Type  string
	Attrs map[string]string
}

// Value returns the qualifier's "value" attribute, if any.
func (q Qualifier) Value() string { return q.Attrs["value"] }

// ── Definition ────────────────────────────────────────────────────────────────

// Definition is the declarative recipe for one bean.
//
// A definition may omit its own class name as long as one is resolvable
// through the parent chain or a factory-bean reference; that is checked when
// the merged definition is computed, not at registration time.
//
//	// Spring: GenericBeanDefinition / RootBeanDefinition
type Definition struct {
	ClassName     string
	FactoryBean   string
	FactoryMethod string
	Parent        string

	Scope    Scope
	LazyInit bool
	Autowire AutowireMode
	Primary  bool
	Role     Role

	DependsOn     []string
	InitMethod    string
	DestroyMethod string

	ConstructorArgs []ConstructorArg
	Properties      []PropertyValue
	Qualifiers      []Qualifier
}

// NewDefinition returns a definition for the given class name.
func NewDefinition(className string) *Definition {
	return &Definition{ClassName: className}
}

// ScopeOrDefault returns the effective scope (singleton when unset).
func (d *Definition) ScopeOrDefault() Scope {
	if d.Scope == "" {
		return ScopeSingleton
	}
	return d.Scope
}

// SetProperty adds a property value, replacing any existing one of the same
// name (last write wins, mirroring registration semantics).
func (d *Definition) SetProperty(name string, v Value) {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			d.Properties[i].Value = v
			return
		}
	}
	d.Properties = append(d.Properties, PropertyValue{Name: name, Value: v})
}

// PropertyNamed reports the value for name and whether it is present.
func (d *Definition) PropertyNamed(name string) (Value, bool) {
	for _, pv := range d.Properties {
		if pv.Name == name {
			return pv.Value, true
		}
	}
	return nil, false
}

// AddConstructorArg appends an indexed constructor argument.
func (d *Definition) AddConstructorArg(index int, v Value) {
	d.ConstructorArgs = append(d.ConstructorArgs, ConstructorArg{Index: index, Value: v})
}

// AddGenericArg appends a constructor argument matched by type.
func (d *Definition) AddGenericArg(v Value) {
	d.ConstructorArgs = append(d.ConstructorArgs, ConstructorArg{Index: -1, Value: v})
}

// Clone returns a deep-enough copy: slices and maps are duplicated so a
// merged definition can be mutated without touching the registered one.
func (d *Definition) Clone() *Definition {
	c := *d
	c.DependsOn = append([]string(nil), d.DependsOn...)
	c.ConstructorArgs = append([]ConstructorArg(nil), d.ConstructorArgs...)
	c.Properties = append([]PropertyValue(nil), d.Properties...)
	c.Qualifiers = make([]Qualifier, len(d.Qualifiers))
	for i, q := range d.Qualifiers {
		attrs := make(map[string]string, len(q.Attrs))
		for k, v := range q.Attrs {
			attrs[k] = v
		}
		c.Qualifiers[i] = Qualifier{Type: q.Type, Attrs: attrs}
	}
	return &c
}

// mergeFrom overlays child attributes on top of the receiver (a cloned
// parent definition). Scalars are overridden when the child sets them,
// property values are unioned with the child winning on name collision,
// and constructor args are unioned by index.
func (d *Definition) mergeFrom(child *Definition) {
	if child.ClassName != "" {
		d.ClassName = child.ClassName
	}
	if child.FactoryBean != "" {
		d.FactoryBean = child.FactoryBean
	}
	if child.FactoryMethod != "" {
		d.FactoryMethod = child.FactoryMethod
	}
	if child.Scope != "" {
		d.Scope = child.Scope
	}
	d.LazyInit = child.LazyInit
	d.Autowire = child.Autowire
	d.Primary = child.Primary
	d.Role = child.Role
	if len(child.DependsOn) > 0 {
		d.DependsOn = append([]string(nil), child.DependsOn...)
	}
	if child.InitMethod != "" {
		d.InitMethod = child.InitMethod
	}
	if child.DestroyMethod != "" {
		d.DestroyMethod = child.DestroyMethod
	}

	for _, arg := range child.ConstructorArgs {
		if arg.Index < 0 {
			d.ConstructorArgs = append(d.ConstructorArgs, arg)
			continue
		}
		replaced := false
		for i := range d.ConstructorArgs {
			if d.ConstructorArgs[i].Index == arg.Index {
				d.ConstructorArgs[i] = arg
				replaced = true
				break
			}
		}
		if !replaced {
			d.ConstructorArgs = append(d.ConstructorArgs, arg)
		}
	}
	for _, pv := range child.Properties {
		d.SetProperty(pv.Name, pv.Value)
	}
	d.Qualifiers = append(d.Qualifiers, child.Qualifiers...)
}

// NamedDefinition pairs a definition with its registration name and aliases,
// as produced by a DefinitionSource.
type NamedDefinition struct {
	Name       string
	Aliases    []string
	Definition *Definition
}

// DefinitionSource produces definition records from an external descriptor.
// Descriptor syntax is entirely the source's concern.
type DefinitionSource interface {
	Load(descriptor any) ([]NamedDefinition, error)
}
