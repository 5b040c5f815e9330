package beans

import (
	"reflect"
	"strconv"
	"sync"
)

// GeneratedNameSeparator joins a generated base name with its uniquing
// suffix: "#0", "#1", ... for top-level definitions, "#<hex>" for nested.
const GeneratedNameSeparator = "#"

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry is the mutable store of bean definitions and name aliases.
//
// Registration order is preserved and is the discovery order used by the
// post-processor pipelines, so bootstrap stays deterministic. Once frozen
// (after the factory-post-processor phase) all mutation is rejected and the
// definitions are treated as frozen metadata for instantiation.
type Registry struct {
	mu sync.RWMutex

	// name → definition, plus registration order for deterministic scans
	definitions map[string]*Definition
	order       []string

	// alias → canonical-or-next-hop name; lookups follow the full chain
	aliases map[string]string

	// name → merged (parent-chain flattened) definition
	merged map[string]*Definition

	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]*Definition),
		aliases:     make(map[string]string),
		merged:      make(map[string]*Definition),
	}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register stores a definition under name, replacing any existing one
// (last write wins). It fails once the registry is frozen.
func (r *Registry) Register(name string, def *Definition) error {
	if name == "" {
		return &RegistrationError{Name: name, Reason: "empty bean name"}
	}
	if def == nil {
		return &RegistrationError{Name: name, Reason: "nil definition"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return &RegistrationError{Name: name, Reason: "registry is frozen"}
	}
	if _, exists := r.definitions[name]; !exists {
		r.order = append(r.order, name)
	}
	r.definitions[name] = def
	// Stale merged metadata for this name (and anything inheriting from it)
	// must not survive a replacement.
	r.invalidateMergedLocked(name)
	return nil
}

// Remove deletes the definition for name. Unknown names are an error.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return &RegistrationError{Name: name, Reason: "registry is frozen"}
	}
	if _, ok := r.definitions[name]; !ok {
		return &RegistrationError{Name: name, Reason: "no such definition"}
	}
	delete(r.definitions, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.invalidateMergedLocked(name)
	return nil
}

// Definition returns the registered (unmerged) definition for name.
func (r *Registry) Definition(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	if !ok {
		return nil, &DefinitionError{Name: name, Reason: "no such definition"}
	}
	return def, nil
}

// Contains reports whether a definition is registered under name
// (aliases are not followed).
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.definitions[name]
	return ok
}

// Names returns all definition names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}

// Freeze rejects all further registry mutation. Definitions are treated as
// frozen metadata from here on.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// ── Aliases ───────────────────────────────────────────────────────────────────

// RegisterAlias binds alias to name. Re-binding an alias to the same name is
// a no-op; binding it to a different name fails; an alias chain that would
// loop back on itself raises AliasCycleError.
func (r *Registry) RegisterAlias(name, alias string) error {
	if name == "" || alias == "" {
		return &RegistrationError{Name: name, Reason: "empty alias or bean name"}
	}
	if name == alias {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.aliases[alias]; ok {
		if existing == name {
			return nil
		}
		return &RegistrationError{Name: alias, Reason: "alias already bound to " + strconv.Quote(existing)}
	}
	// Walk the chain from name: reaching alias means the new edge closes a loop.
	for cur := name; ; {
		next, ok := r.aliases[cur]
		if !ok {
			break
		}
		if next == alias {
			return &AliasCycleError{Name: name, Alias: alias}
		}
		cur = next
	}
	r.aliases[alias] = name
	return nil
}

// Canonical fully resolves name through the alias chain to a non-aliased
// name. Unknown names resolve to themselves.
func (r *Registry) Canonical(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cur := name
	for {
		next, ok := r.aliases[cur]
		if !ok {
			return cur
		}
		cur = next
	}
}

// Aliases returns all aliases that (transitively) resolve to name.
func (r *Registry) Aliases(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for alias := range r.aliases {
		cur := alias
		for {
			next, ok := r.aliases[cur]
			if !ok {
				break
			}
			cur = next
		}
		if cur == name {
			out = append(out, alias)
		}
	}
	return out
}

// IsInUse reports whether name denotes a definition, is an alias, or is the
// target of any alias.
func (r *Registry) IsInUse(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.definitions[name]; ok {
		return true
	}
	if _, ok := r.aliases[name]; ok {
		return true
	}
	for _, target := range r.aliases {
		if target == name {
			return true
		}
	}
	return false
}

// ── Name generation ───────────────────────────────────────────────────────────

// GenerateName derives a unique name for an anonymous definition. The base
// is the class name, falling back to parent + "$child", then factory-bean +
// "$created". Nested definitions get an identity-hex suffix; top-level
// definitions get "#N" with N counting up from 0 until the name is unique.
//
//	// Spring: BeanDefinitionReaderUtils.generateBeanName
func (r *Registry) GenerateName(def *Definition, nested bool) (string, error) {
	base := def.ClassName
	if base == "" {
		switch {
		case def.Parent != "":
			base = def.Parent + "$child"
		case def.FactoryBean != "":
			base = def.FactoryBean + "$created"
		}
	}
	if base == "" {
		return "", &DefinitionError{Reason: "anonymous definition sets neither class nor parent nor factory-bean; cannot generate a name"}
	}
	if nested {
		return base + GeneratedNameSeparator + identityHex(def), nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counter := -1
	name := base
	for counter == -1 || r.containsLocked(name) {
		counter++
		name = base + GeneratedNameSeparator + strconv.Itoa(counter)
	}
	return name, nil
}

func (r *Registry) containsLocked(name string) bool {
	_, ok := r.definitions[name]
	return ok
}

func identityHex(def *Definition) string {
	return strconv.FormatUint(uint64(reflect.ValueOf(def).Pointer()), 16)
}

// ── Merged definitions ────────────────────────────────────────────────────────

// Merged returns the parent-chain flattened definition for name, cached
// until the cache is explicitly invalidated. A merged definition that still
// resolves no class and no factory-bean is a definition error.
func (r *Registry) Merged(name string) (*Definition, error) {
	r.mu.RLock()
	if m, ok := r.merged[name]; ok {
		r.mu.RUnlock()
		return m, nil
	}
	r.mu.RUnlock()

	m, err := r.mergeChain(name, map[string]bool{})
	if err != nil {
		return nil, err
	}
	if m.ClassName == "" && m.FactoryBean == "" {
		return nil, &DefinitionError{Name: name, Reason: "no class resolvable through parent chain or factory-bean"}
	}
	r.mu.Lock()
	r.merged[name] = m
	r.mu.Unlock()
	return m, nil
}

func (r *Registry) mergeChain(name string, seen map[string]bool) (*Definition, error) {
	if seen[name] {
		return nil, &DefinitionError{Name: name, Reason: "parent chain is cyclic"}
	}
	seen[name] = true

	def, err := r.Definition(name)
	if err != nil {
		return nil, err
	}
	if def.Parent == "" {
		return def.Clone(), nil
	}
	parent, err := r.mergeChain(r.Canonical(def.Parent), seen)
	if err != nil {
		return nil, &DefinitionError{Name: name, Reason: "unresolvable parent: " + err.Error()}
	}
	merged := parent
	merged.Parent = ""
	merged.mergeFrom(def)
	return merged, nil
}

// MergeStandalone flattens a definition that is not registered anywhere,
// e.g. a nested one. Its parent, if any, is still looked up in the registry.
func (r *Registry) MergeStandalone(def *Definition) (*Definition, error) {
	if def.Parent == "" {
		if def.ClassName == "" && def.FactoryBean == "" {
			return nil, &DefinitionError{Reason: "nested definition resolves no class"}
		}
		return def.Clone(), nil
	}
	parent, err := r.mergeChain(r.Canonical(def.Parent), map[string]bool{})
	if err != nil {
		return nil, err
	}
	merged := parent
	merged.Parent = ""
	merged.mergeFrom(def)
	if merged.ClassName == "" && merged.FactoryBean == "" {
		return nil, &DefinitionError{Reason: "nested definition resolves no class"}
	}
	return merged, nil
}

// ClearMergedCache drops all cached merged definitions. Mandatory after the
// factory-post-processor phase, which may have rewritten metadata.
func (r *Registry) ClearMergedCache() {
	r.mu.Lock()
	r.merged = make(map[string]*Definition)
	r.mu.Unlock()
}

// invalidateMergedLocked drops merged entries affected by a change to name.
// Children are found by walking parents, so the whole affected subtree goes.
func (r *Registry) invalidateMergedLocked(name string) {
	delete(r.merged, name)
	for n := range r.merged {
		if def, ok := r.definitions[n]; ok && r.inheritsLocked(def, name) {
			delete(r.merged, n)
		}
	}
}

func (r *Registry) inheritsLocked(def *Definition, ancestor string) bool {
	for def != nil && def.Parent != "" {
		if def.Parent == ancestor {
			return true
		}
		def = r.definitions[def.Parent]
	}
	return false
}
