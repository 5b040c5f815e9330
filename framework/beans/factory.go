package beans

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"unicode"

	"go.uber.org/zap"
)

// ── Factory ───────────────────────────────────────────────────────────────────

// Factory is the instantiation engine: it resolves a bean's dependencies,
// constructs it, runs the instance post-processor chain around its
// initialization callbacks, and caches singletons.
//
// Concurrent GetBean calls are safe. A singleton already being built by
// another goroutine is waited for rather than rebuilt; a singleton
// re-entered by its own dependency chain is a circular dependency, resolved
// through early reference exposure where possible and failed otherwise.
type Factory struct {
	mu   sync.Mutex
	cond *sync.Cond

	registry  *Registry
	resolver  ClassResolver
	converter ValueConverter
	log       *zap.Logger

	// abstract name → fully initialized singleton
	singletons map[string]any

	// name → raw, not-yet-populated instance, visible only to the
	// resolution that owns the in-progress creation
	earlySingletons map[string]any

	// name → the resolution currently constructing it
	inCreation map[string]*resolution

	// bean → beans that declared a depends-on edge to it; consulted to
	// reject cyclic depends-on relationships before recursing
	dependentBeans map[string]map[string]bool

	// singleton completion order plus destroy metadata captured at
	// creation time, for reverse-order destruction
	destroyOrder []singletonRecord

	processors []InstancePostProcessor
	listeners  []Listener
	scopes     map[string]ScopeHandler

	allowCircular bool
}

// resolution tracks one top-level GetBean request: the ordered set of names
// currently under construction on this request's recursion path.
type resolution struct {
	chain []string
}

func (r *resolution) push(name string) { r.chain = append(r.chain, name) }
func (r *resolution) pop()             { r.chain = r.chain[:len(r.chain)-1] }

func (r *resolution) contains(name string) bool {
	for _, n := range r.chain {
		if n == name {
			return true
		}
	}
	return false
}

func (r *resolution) snapshot() []string { return append([]string(nil), r.chain...) }

// singletonRecord pins the destroy metadata of a completed singleton so
// teardown never has to consult the registry again.
type singletonRecord struct {
	name          string
	destroyMethod string
}

// ScopeHandler backs a custom (non-singleton, non-prototype) scope. Get
// returns the scoped instance for name, invoking create on a miss.
type ScopeHandler interface {
	Get(name string, create func() (any, error)) (any, error)
}

// NewFactory creates a factory over the given registry and class resolver.
// Circular references via property injection are allowed by default.
func NewFactory(registry *Registry, resolver ClassResolver, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Factory{
		registry:        registry,
		resolver:        resolver,
		converter:       defaultConverter{},
		log:             log,
		singletons:      make(map[string]any),
		earlySingletons: make(map[string]any),
		inCreation:      make(map[string]*resolution),
		dependentBeans:  make(map[string]map[string]bool),
		scopes:          make(map[string]ScopeHandler),
		allowCircular:   true,
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Registry returns the definition registry this factory instantiates from.
func (f *Factory) Registry() *Registry { return f.registry }

// SetAllowCircularReferences toggles early reference exposure. With it off,
// every cycle — even a property-injection one — fails.
func (f *Factory) SetAllowCircularReferences(allow bool) { f.allowCircular = allow }

// SetConverter replaces the literal value converter.
func (f *Factory) SetConverter(c ValueConverter) { f.converter = c }

// RegisterScope installs a handler for a custom scope name.
func (f *Factory) RegisterScope(name string, h ScopeHandler) {
	f.mu.Lock()
	f.scopes[name] = h
	f.mu.Unlock()
}

// ── Instance post-processor chain ─────────────────────────────────────────────

// AddInstancePostProcessor appends pp to the chain. If the identical
// processor is already registered it is moved to the end instead, which is
// how internal processors get re-registered after all user ones.
func (f *Factory) AddInstancePostProcessor(pp InstancePostProcessor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.processors {
		if existing == pp {
			f.processors = append(f.processors[:i], f.processors[i+1:]...)
			break
		}
	}
	f.processors = append(f.processors, pp)
}

// ProcessorCount returns the current chain length.
func (f *Factory) ProcessorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processors)
}

func (f *Factory) snapshotProcessors() []InstancePostProcessor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]InstancePostProcessor(nil), f.processors...)
}

// ── Listeners ─────────────────────────────────────────────────────────────────

func (f *Factory) addListener(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.listeners {
		if existing == l {
			return
		}
	}
	f.listeners = append(f.listeners, l)
}

// NotifyListeners delivers e to every detected container listener.
func (f *Factory) NotifyListeners(e Event) {
	f.mu.Lock()
	listeners := append([]Listener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range listeners {
		l.OnContainerEvent(e)
	}
}

// ── Resolution ────────────────────────────────────────────────────────────────

// GetBean resolves name (aliases allowed) to a fully constructed bean.
func (f *Factory) GetBean(name string) (any, error) {
	return f.getBean(name, &resolution{})
}

// ContainsSingleton reports whether a completed singleton is cached for name.
func (f *Factory) ContainsSingleton(name string) bool {
	canonical := f.registry.Canonical(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.singletons[canonical]
	return ok
}

func (f *Factory) getBean(name string, res *resolution) (any, error) {
	canonical := f.registry.Canonical(name)

	f.mu.Lock()
	if inst, ok := f.singletons[canonical]; ok {
		f.mu.Unlock()
		return inst, nil
	}
	// An early reference is handed out only to the resolution that owns the
	// in-progress creation; independent requests wait for the real thing.
	if owner, building := f.inCreation[canonical]; building && owner == res {
		if inst, ok := f.earlySingletons[canonical]; ok {
			f.mu.Unlock()
			f.log.Debug("returning early reference for bean under construction",
				zap.String("bean", canonical))
			return inst, nil
		}
	}
	f.mu.Unlock()

	def, err := f.registry.Merged(canonical)
	if err != nil {
		return nil, err
	}

	for _, dep := range def.DependsOn {
		depCanon := f.registry.Canonical(dep)
		if depCanon == canonical {
			return nil, &CircularDependencyError{Chain: []string{canonical}}
		}
		// The edge about to be added must not close a loop: a cyclic
		// depends-on relationship can never be satisfied.
		if f.isDependent(canonical, depCanon) {
			return nil, &CircularDependencyError{Chain: []string{canonical, depCanon}}
		}
		f.registerDependentBean(depCanon, canonical)
		if _, err := f.getBean(depCanon, res); err != nil {
			return nil, fmt.Errorf("bean %q depends-on %q: %w", canonical, dep, err)
		}
	}

	switch def.ScopeOrDefault() {
	case ScopeSingleton:
		return f.getSingleton(canonical, def, res)

	case ScopePrototype:
		// Prototypes are never cached and never enter the shared creation
		// tracker; the per-resolution chain still catches self-recursion.
		if res.contains(canonical) {
			return nil, &CircularDependencyError{Chain: res.snapshot()}
		}
		res.push(canonical)
		defer res.pop()
		return f.createBean(canonical, def, res)

	default:
		f.mu.Lock()
		handler, ok := f.scopes[string(def.Scope)]
		f.mu.Unlock()
		if !ok {
			return nil, &DefinitionError{Name: canonical, Reason: "unknown scope " + strconv.Quote(string(def.Scope))}
		}
		return handler.Get(canonical, func() (any, error) {
			res.push(canonical)
			defer res.pop()
			return f.createBean(canonical, def, res)
		})
	}
}

// registerDependentBean records that dependent declared a depends-on edge
// to bean.
//
//	// Spring: DefaultSingletonBeanRegistry.registerDependentBean
func (f *Factory) registerDependentBean(bean, dependent string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.dependentBeans[bean]
	if set == nil {
		set = make(map[string]bool)
		f.dependentBeans[bean] = set
	}
	set[dependent] = true
}

// isDependent reports whether candidate transitively depends on bean.
//
//	// Spring: DefaultSingletonBeanRegistry.isDependent
func (f *Factory) isDependent(bean, candidate string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isDependentLocked(bean, candidate, make(map[string]bool))
}

func (f *Factory) isDependentLocked(bean, candidate string, seen map[string]bool) bool {
	if seen[bean] {
		return false
	}
	seen[bean] = true
	dependents := f.dependentBeans[bean]
	if dependents[candidate] {
		return true
	}
	for dependent := range dependents {
		if f.isDependentLocked(dependent, candidate, seen) {
			return true
		}
	}
	return false
}

func (f *Factory) getSingleton(name string, def *Definition, res *resolution) (any, error) {
	f.mu.Lock()
	for {
		if inst, ok := f.singletons[name]; ok {
			f.mu.Unlock()
			return inst, nil
		}
		owner, building := f.inCreation[name]
		if !building {
			break
		}
		if owner == res {
			// The dependency chain looped back onto a bean this resolution
			// is still constructing and no early reference was exposed:
			// unrecoverable constructor-injection cycle.
			chain := res.snapshot()
			f.mu.Unlock()
			return nil, &CircularDependencyError{Chain: chain}
		}
		// Built concurrently by an independent request: wait, then re-check.
		f.cond.Wait()
	}
	f.inCreation[name] = res
	f.mu.Unlock()
	res.push(name)

	// Deferred so a panicking constructor or hook still releases the
	// creation tracker; a leaked entry would block every later request
	// for this name in cond.Wait.
	defer func() {
		res.pop()
		f.mu.Lock()
		delete(f.inCreation, name)
		delete(f.earlySingletons, name)
		f.cond.Broadcast()
		f.mu.Unlock()
	}()

	inst, err := f.createBean(name, def, res)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.singletons[name] = inst
	f.destroyOrder = append(f.destroyOrder, singletonRecord{name: name, destroyMethod: def.DestroyMethod})
	f.mu.Unlock()
	return inst, nil
}

// createBean runs the full construction sequence for one bean: merged
// metadata hooks, instantiation, early exposure, property population, and
// the initialization chain.
func (f *Factory) createBean(name string, def *Definition, res *resolution) (any, error) {
	for _, pp := range f.snapshotProcessors() {
		if mp, ok := pp.(MergedDefinitionPostProcessor); ok {
			if err := mp.PostProcessMergedDefinition(def, name); err != nil {
				return nil, &ProcessorError{Processor: processorName(mp), Err: err}
			}
		}
	}

	raw, err := f.instantiate(name, def, res)
	if err != nil {
		return nil, err
	}

	singleton := def.ScopeOrDefault() == ScopeSingleton
	earlyExposed := singleton && f.allowCircular
	if earlyExposed {
		// Expose the raw instance before resolving its properties so a
		// dependency that loops back can complete its own wiring.
		f.mu.Lock()
		f.earlySingletons[name] = raw
		f.mu.Unlock()
	}

	if err := f.populate(name, def, raw, res); err != nil {
		return nil, err
	}

	bean, err := f.initialize(name, def, raw)
	if err != nil {
		return nil, err
	}

	if earlyExposed && !sameRef(bean, raw) {
		// A hook replaced the instance after the raw reference may already
		// have been injected into a dependent: those dependents keep the
		// pre-wrap object while later requesters see the wrapped one.
		f.log.Warn("bean replaced by post-processor after early exposure; "+
			"dependents wired during the cycle hold the raw reference",
			zap.String("bean", name))
	}
	return bean, nil
}

// ── Instantiation ─────────────────────────────────────────────────────────────

func (f *Factory) instantiate(name string, def *Definition, res *resolution) (any, error) {
	if def.FactoryBean != "" {
		if def.FactoryMethod == "" {
			return nil, &DefinitionError{Name: name, Reason: "factory-bean set without factory-method"}
		}
		fb, err := f.getBean(def.FactoryBean, res)
		if err != nil {
			return nil, fmt.Errorf("bean %q: factory-bean: %w", name, err)
		}
		m := reflect.ValueOf(fb).MethodByName(def.FactoryMethod)
		if !m.IsValid() {
			return nil, &DefinitionError{Name: name,
				Reason: fmt.Sprintf("factory-bean %q has no method %s", def.FactoryBean, def.FactoryMethod)}
		}
		args, err := f.resolveArgs(name, def, m, res)
		if err != nil {
			return nil, err
		}
		return callProducer(name, m, args)
	}

	handle, err := f.resolver.Resolve(def.ClassName)
	if err != nil {
		return nil, &DefinitionError{Name: name, Reason: err.Error()}
	}
	if handle.Ctor.IsValid() {
		args, err := f.resolveArgs(name, def, handle.Ctor, res)
		if err != nil {
			return nil, err
		}
		return callProducer(name, handle.Ctor, args)
	}
	if len(def.ConstructorArgs) > 0 {
		return nil, &DefinitionError{Name: name,
			Reason: "constructor arguments declared but class " + def.ClassName + " has no registered constructor"}
	}
	return reflect.New(handle.Type).Interface(), nil
}

func callProducer(name string, fn reflect.Value, args []reflect.Value) (any, error) {
	out := fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("bean %q: constructor failed: %w", name, out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}

// resolveArgs binds constructor parameters: explicit index match first, then
// generic args by type, then required by-type autowiring.
func (f *Factory) resolveArgs(name string, def *Definition, fn reflect.Value, res *resolution) ([]reflect.Value, error) {
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, &DefinitionError{Name: name, Reason: "variadic constructors are not supported"}
	}

	indexed := make(map[int]ConstructorArg)
	var generic []ConstructorArg
	for _, arg := range def.ConstructorArgs {
		if arg.Index >= 0 {
			indexed[arg.Index] = arg
		} else {
			generic = append(generic, arg)
		}
	}
	if len(indexed) > 0 {
		for idx := range indexed {
			if idx >= ft.NumIn() {
				return nil, &DefinitionError{Name: name,
					Reason: fmt.Sprintf("constructor argument index %d out of range (%d parameters)", idx, ft.NumIn())}
			}
		}
	}
	usedGeneric := make([]bool, len(generic))

	args := make([]reflect.Value, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		pt := ft.In(i)

		if arg, ok := indexed[i]; ok {
			v, err := f.resolveValue(name, argValue(arg), pt, res)
			if err != nil {
				return nil, err
			}
			args[i] = v
			continue
		}

		matched := false
		for gi, arg := range generic {
			if usedGeneric[gi] {
				continue
			}
			v, err := f.resolveValue(name, argValue(arg), pt, res)
			if err != nil {
				continue
			}
			usedGeneric[gi] = true
			args[i] = v
			matched = true
			break
		}
		if matched {
			continue
		}

		inst, err := f.resolveDependency(name, pt, "", "", true, res)
		if err != nil {
			return nil, err
		}
		args[i] = reflect.ValueOf(inst)
	}
	return args, nil
}

// argValue maps a named constructor arg without an explicit value to a
// reference to that bean name.
func argValue(arg ConstructorArg) Value {
	if arg.Value == nil && arg.Name != "" {
		return Ref{Name: arg.Name}
	}
	return arg.Value
}

// ── Value resolution ──────────────────────────────────────────────────────────

func (f *Factory) resolveValue(owner string, val Value, target reflect.Type, res *resolution) (reflect.Value, error) {
	switch v := val.(type) {
	case Literal:
		converted, err := f.converter.Convert(v.Raw, target)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("bean %q: %w", owner, err)
		}
		if converted == nil {
			return reflect.Zero(target), nil
		}
		return reflect.ValueOf(converted), nil

	case Ref:
		inst, err := f.getBean(v.Name, res)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("bean %q: reference %q: %w", owner, v.Name, err)
		}
		rv := reflect.ValueOf(inst)
		if !rv.Type().AssignableTo(target) {
			return reflect.Value{}, &ConversionError{Raw: inst, Target: target.String()}
		}
		return rv, nil

	case Inner:
		merged, err := f.registry.MergeStandalone(v.Def)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("bean %q: nested definition: %w", owner, err)
		}
		innerName, err := f.registry.GenerateName(merged, true)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("bean %q: nested definition: %w", owner, err)
		}
		inst, err := f.createBean(innerName, merged, res)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("bean %q: nested bean %q: %w", owner, innerName, err)
		}
		rv := reflect.ValueOf(inst)
		if !rv.Type().AssignableTo(target) {
			return reflect.Value{}, &ConversionError{Raw: inst, Target: target.String()}
		}
		return rv, nil

	case List:
		if target.Kind() != reflect.Slice {
			return reflect.Value{}, &ConversionError{Raw: v, Target: target.String()}
		}
		out := reflect.MakeSlice(target, len(v.Elems), len(v.Elems))
		for i, elem := range v.Elems {
			ev, err := f.resolveValue(owner, elem, target.Elem(), res)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	default:
		return reflect.Value{}, &DefinitionError{Name: owner, Reason: fmt.Sprintf("unsupported value kind %T", val)}
	}
}

// resolveDependency locates a single bean assignable to t: by type, with
// ties broken by the primary flag, then a qualifier attribute, then the
// declared name. Zero candidates is fatal when required; multiple equally
// eligible candidates is always fatal.
func (f *Factory) resolveDependency(owner string, t reflect.Type, qualifier, declaredName string, required bool, res *resolution) (any, error) {
	candidates := f.NamesForType(t)
	// A bean never autowires into itself.
	filtered := candidates[:0:0]
	for _, c := range candidates {
		if c != owner {
			filtered = append(filtered, c)
		}
	}
	candidates = filtered

	switch len(candidates) {
	case 0:
		if !required {
			return nil, nil
		}
		return nil, &DependencyResolutionError{Bean: owner, Target: t.String()}
	case 1:
		return f.getBean(candidates[0], res)
	}

	if primaries := f.filterPrimary(candidates); len(primaries) == 1 {
		return f.getBean(primaries[0], res)
	} else if len(primaries) > 1 {
		return nil, &DependencyResolutionError{Bean: owner, Target: t.String(), Candidates: primaries}
	}
	if qualifier != "" {
		if qualified := f.filterQualifier(candidates, qualifier); len(qualified) == 1 {
			return f.getBean(qualified[0], res)
		} else if len(qualified) > 1 {
			return nil, &DependencyResolutionError{Bean: owner, Target: t.String(), Candidates: qualified}
		}
	}
	if declaredName != "" {
		for _, c := range candidates {
			if c == declaredName || f.registry.Canonical(declaredName) == c {
				return f.getBean(c, res)
			}
		}
	}
	return nil, &DependencyResolutionError{Bean: owner, Target: t.String(), Candidates: candidates}
}

func (f *Factory) filterPrimary(names []string) []string {
	var out []string
	for _, n := range names {
		if def, err := f.registry.Merged(n); err == nil && def.Primary {
			out = append(out, n)
		}
	}
	return out
}

func (f *Factory) filterQualifier(names []string, qualifier string) []string {
	var out []string
	for _, n := range names {
		def, err := f.registry.Merged(n)
		if err != nil {
			continue
		}
		for _, q := range def.Qualifiers {
			if q.Type == qualifier || q.Value() == qualifier {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// NamesForType returns, in registration order, the names of all definitions
// whose resolved instance type is assignable to t.
func (f *Factory) NamesForType(t reflect.Type) []string {
	var out []string
	for _, name := range f.registry.Names() {
		it := f.instanceTypeOf(name)
		if it == nil {
			continue
		}
		if t.Kind() == reflect.Interface {
			if it.Implements(t) {
				out = append(out, name)
			}
		} else if it.AssignableTo(t) {
			out = append(out, name)
		}
	}
	return out
}

// instanceTypeOf resolves the type a definition will produce, or nil when
// it cannot be determined without instantiation.
func (f *Factory) instanceTypeOf(name string) reflect.Type {
	def, err := f.registry.Merged(name)
	if err != nil {
		return nil
	}
	if def.FactoryBean != "" {
		fbType := f.instanceTypeOf(f.registry.Canonical(def.FactoryBean))
		if fbType == nil || def.FactoryMethod == "" {
			return nil
		}
		m, ok := fbType.MethodByName(def.FactoryMethod)
		if !ok || m.Type.NumOut() == 0 {
			return nil
		}
		return m.Type.Out(0)
	}
	handle, err := f.resolver.Resolve(def.ClassName)
	if err != nil {
		return nil
	}
	return handle.InstanceType()
}

// ── Property population ───────────────────────────────────────────────────────

func (f *Factory) populate(name string, def *Definition, instance any, res *resolution) error {
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		if len(def.Properties) > 0 {
			return &DefinitionError{Name: name, Reason: "property values declared on a non-struct bean"}
		}
		return nil
	}
	elem := rv.Elem()

	explicit := make(map[string]bool)
	for _, pv := range def.Properties {
		field, fieldName := fieldFor(elem, pv.Name)
		if !field.IsValid() {
			return &DefinitionError{Name: name, Reason: "no settable field for property " + strconv.Quote(pv.Name)}
		}
		v, err := f.resolveValue(name, pv.Value, field.Type(), res)
		if err != nil {
			return err
		}
		field.Set(v)
		explicit[fieldName] = true
	}

	mode := def.Autowire
	if mode == AutowireAutoDetect {
		mode = AutowireByType
	}
	switch mode {
	case AutowireByName:
		return f.autowireByName(name, elem, explicit, res)
	case AutowireByType:
		return f.autowireByType(name, elem, explicit, res)
	}
	return nil
}

func (f *Factory) autowireByName(name string, elem reflect.Value, explicit map[string]bool, res *resolution) error {
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := elem.Field(i)
		if !eligibleForAutowire(sf, fv, explicit) {
			continue
		}
		propName := lowerFirst(sf.Name)
		if !f.registry.Contains(f.registry.Canonical(propName)) {
			continue
		}
		inst, err := f.getBean(propName, res)
		if err != nil {
			return fmt.Errorf("bean %q: autowire by name %q: %w", name, propName, err)
		}
		iv := reflect.ValueOf(inst)
		if !iv.Type().AssignableTo(fv.Type()) {
			return &DependencyResolutionError{Bean: name, Target: fv.Type().String(), Candidates: []string{propName}}
		}
		fv.Set(iv)
	}
	return nil
}

func (f *Factory) autowireByType(name string, elem reflect.Value, explicit map[string]bool, res *resolution) error {
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := elem.Field(i)
		if !eligibleForAutowire(sf, fv, explicit) {
			continue
		}
		inst, err := f.resolveDependency(name, fv.Type(), sf.Tag.Get("qualifier"), lowerFirst(sf.Name), false, res)
		if err != nil {
			return err
		}
		if inst == nil {
			continue
		}
		fv.Set(reflect.ValueOf(inst))
	}
	return nil
}

// eligibleForAutowire limits autowiring to settable, still-zero pointer or
// interface fields that no explicit property claimed.
func eligibleForAutowire(sf reflect.StructField, fv reflect.Value, explicit map[string]bool) bool {
	if !fv.CanSet() || explicit[sf.Name] {
		return false
	}
	if k := fv.Kind(); k != reflect.Pointer && k != reflect.Interface {
		return false
	}
	return fv.IsZero()
}

// fieldFor matches a property name to an exported struct field, preferring
// the exact name and falling back to an upper-cased first letter.
func fieldFor(elem reflect.Value, prop string) (reflect.Value, string) {
	t := elem.Type()
	if _, ok := t.FieldByName(prop); ok {
		return elem.FieldByName(prop), prop
	}
	title := upperFirst(prop)
	if _, ok := t.FieldByName(title); ok {
		return elem.FieldByName(title), title
	}
	return reflect.Value{}, ""
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// ── Initialization ────────────────────────────────────────────────────────────

func (f *Factory) initialize(name string, def *Definition, raw any) (any, error) {
	bean := raw
	for _, pp := range f.snapshotProcessors() {
		out, err := pp.BeforeInit(bean, name)
		if err != nil {
			return nil, &ProcessorError{Processor: processorName(pp), Err: err}
		}
		if out != nil {
			bean = out
		}
	}

	if init, ok := bean.(Initializer); ok {
		if err := init.Init(); err != nil {
			return nil, fmt.Errorf("bean %q: init failed: %w", name, err)
		}
	}
	if def.InitMethod != "" {
		if err := callNamed(bean, def.InitMethod); err != nil {
			return nil, fmt.Errorf("bean %q: init method %s: %w", name, def.InitMethod, err)
		}
	}

	for _, pp := range f.snapshotProcessors() {
		out, err := pp.AfterInit(bean, name)
		if err != nil {
			return nil, &ProcessorError{Processor: processorName(pp), Err: err}
		}
		if out != nil {
			bean = out
		}
	}
	return bean, nil
}

// callNamed invokes a no-argument method by name; a single error return is
// propagated.
func callNamed(bean any, method string) error {
	m := reflect.ValueOf(bean).MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("no method %s on %T", method, bean)
	}
	if m.Type().NumIn() != 0 {
		return fmt.Errorf("method %s on %T must take no arguments", method, bean)
	}
	out := m.Call(nil)
	if len(out) == 1 && !out[0].IsNil() {
		if err, ok := out[0].Interface().(error); ok {
			return err
		}
	}
	return nil
}

// ── Eager init & teardown ─────────────────────────────────────────────────────

// PreInstantiateSingletons eagerly creates every non-lazy singleton, in
// registration order. The first failure aborts.
func (f *Factory) PreInstantiateSingletons() error {
	for _, name := range f.registry.Names() {
		def, err := f.registry.Merged(name)
		if err != nil {
			return err
		}
		if def.ScopeOrDefault() != ScopeSingleton || def.LazyInit {
			continue
		}
		if _, err := f.GetBean(name); err != nil {
			return err
		}
	}
	return nil
}

// DestroySingletons tears down all cached singletons in reverse creation
// order, invoking Disposable and any destroy method recorded at creation
// time — the registry is never consulted during teardown. Destruction
// failures are logged, never propagated.
func (f *Factory) DestroySingletons() {
	f.mu.Lock()
	order := append([]singletonRecord(nil), f.destroyOrder...)
	instances := f.singletons
	f.singletons = make(map[string]any)
	f.destroyOrder = nil
	f.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		rec := order[i]
		bean, ok := instances[rec.name]
		if !ok {
			continue
		}
		if d, ok := bean.(Disposable); ok {
			if err := d.Destroy(); err != nil {
				f.log.Warn("destroy callback failed", zap.String("bean", rec.name), zap.Error(err))
			}
		}
		if rec.destroyMethod != "" {
			if err := callNamed(bean, rec.destroyMethod); err != nil {
				f.log.Warn("destroy method failed", zap.String("bean", rec.name), zap.Error(err))
			}
		}
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// sameRef reports whether a and b are the same referenced object. Values of
// non-reference kinds never alias and compare false.
func sameRef(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return vb.Kind() == va.Kind() && va.Pointer() == vb.Pointer()
	}
	return false
}

func processorName(pp any) string { return fmt.Sprintf("%T", pp) }

// Resolve resolves name through f and type-asserts the result.
func Resolve[T any](f *Factory, name string) (T, error) {
	var zero T
	inst, err := f.GetBean(name)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("beans: Resolve[%T]: %q resolved to %T", zero, name, inst)
	}
	return typed, nil
}

// MustResolve is Resolve for wiring code that treats failure as fatal.
func MustResolve[T any](f *Factory, name string) T {
	v, err := Resolve[T](f, name)
	if err != nil {
		panic(err)
	}
	return v
}
