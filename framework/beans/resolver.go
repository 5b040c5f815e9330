package beans

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// ── Class resolution ──────────────────────────────────────────────────────────

// TypeHandle is a resolved class reference: either a struct type the engine
// instantiates with reflect.New, or a constructor function whose parameters
// are resolved as constructor arguments.
type TypeHandle struct {
	Name string
	Type reflect.Type  // struct type; zero for pure constructor handles
	Ctor reflect.Value // func(...) T or func(...) (T, error); zero when absent
}

// InstanceType is the type of values this handle produces, used for
// candidate matching during autowiring.
func (h *TypeHandle) InstanceType() reflect.Type {
	if h.Ctor.IsValid() {
		return h.Ctor.Type().Out(0)
	}
	return reflect.PointerTo(h.Type)
}

// ClassResolver maps declarative class names to type handles.
type ClassResolver interface {
	Resolve(name string) (*TypeHandle, error)
}

// TypeRegistry is the default ClassResolver. Go has no classpath scanning,
// so types and constructors are registered explicitly up front.
type TypeRegistry struct {
	mu      sync.RWMutex
	handles map[string]*TypeHandle
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{handles: make(map[string]*TypeHandle)}
}

// RegisterType binds name to the struct type of sample, which must be a
// struct or pointer to struct. Instances are created as pointers.
func (t *TypeRegistry) RegisterType(name string, sample any) error {
	rt := reflect.TypeOf(sample)
	if rt == nil {
		return fmt.Errorf("beans: RegisterType %q: nil sample", name)
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("beans: RegisterType %q: want struct, got %s", name, rt.Kind())
	}
	t.mu.Lock()
	t.handles[name] = &TypeHandle{Name: name, Type: rt}
	t.mu.Unlock()
	return nil
}

// RegisterFunc binds name to a constructor function returning the instance,
// optionally with a trailing error.
func (t *TypeRegistry) RegisterFunc(name string, ctor any) error {
	fv := reflect.ValueOf(ctor)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return fmt.Errorf("beans: RegisterFunc %q: want func, got %s", name, ft.Kind())
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errType {
			return fmt.Errorf("beans: RegisterFunc %q: second return must be error", name)
		}
	default:
		return fmt.Errorf("beans: RegisterFunc %q: want 1 or 2 return values", name)
	}
	t.mu.Lock()
	t.handles[name] = &TypeHandle{Name: name, Ctor: fv}
	t.mu.Unlock()
	return nil
}

// Resolve implements ClassResolver.
func (t *TypeRegistry) Resolve(name string) (*TypeHandle, error) {
	t.mu.RLock()
	h, ok := t.handles[name]
	t.mu.RUnlock()
	if !ok {
		return nil, &TypeNotFoundError{Name: name}
	}
	return h, nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// ── Value conversion ──────────────────────────────────────────────────────────

// ValueConverter coerces declarative literal values to injection targets.
type ValueConverter interface {
	Convert(raw any, target reflect.Type) (any, error)
}

// defaultConverter handles assignability, numeric convertibility, and
// string parsing for bools and numbers.
type defaultConverter struct{}

func (defaultConverter) Convert(raw any, target reflect.Type) (any, error) {
	if raw == nil {
		return reflect.Zero(target).Interface(), nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(target) {
		return raw, nil
	}
	if rv.Type().ConvertibleTo(target) && rv.Kind() != reflect.String {
		return rv.Convert(target).Interface(), nil
	}
	if s, ok := raw.(string); ok {
		switch target.Kind() {
		case reflect.String:
			return s, nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err == nil {
				return b, nil
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				return reflect.ValueOf(i).Convert(target).Interface(), nil
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u, err := strconv.ParseUint(s, 10, 64)
			if err == nil {
				return reflect.ValueOf(u).Convert(target).Interface(), nil
			}
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err == nil {
				return reflect.ValueOf(f).Convert(target).Interface(), nil
			}
		}
	}
	return nil, &ConversionError{Raw: raw, Target: target.String()}
}
