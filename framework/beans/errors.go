package beans

import (
	"fmt"
	"strings"
)

// ── Error taxonomy ────────────────────────────────────────────────────────────

// DefinitionError marks a malformed or unresolvable definition. It is fatal
// and aborts bootstrap.
type DefinitionError struct {
	Name   string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Name == "" {
		return "beans: invalid definition: " + e.Reason
	}
	return fmt.Sprintf("beans: invalid definition %q: %s", e.Name, e.Reason)
}

// RegistrationError marks a rejected registry mutation: registering into a
// frozen registry, removing an unknown name, or binding an alias that
// already denotes a different bean.
type RegistrationError struct {
	Name   string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("beans: registration of %q rejected: %s", e.Name, e.Reason)
}

// AliasCycleError is raised when registering an alias would make the alias
// graph cyclic. Kept distinct from RegistrationError so callers can tell a
// conflicting alias from a cyclic one.
type AliasCycleError struct {
	Name  string
	Alias string
}

func (e *AliasCycleError) Error() string {
	return fmt.Sprintf("beans: alias %q for %q would form a cycle", e.Alias, e.Name)
}

// CircularDependencyError reports an unresolvable cycle: constructor
// injection looping back onto a bean under construction, or a cyclic
// depends-on relationship. Chain holds the involved names, outermost first.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return "beans: circular dependency: " + strings.Join(e.Chain, " -> ")
}

// DependencyResolutionError reports zero or ambiguous candidates for a
// required dependency of Bean.
type DependencyResolutionError struct {
	Bean       string
	Target     string
	Candidates []string
}

func (e *DependencyResolutionError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("beans: bean %q: no candidate for required dependency %s", e.Bean, e.Target)
	}
	return fmt.Sprintf("beans: bean %q: ambiguous dependency %s, candidates %v (mark one primary or qualify it)",
		e.Bean, e.Target, e.Candidates)
}

// ProcessorError wraps a failure inside a post-processor, identifying the
// offending processor. It aborts the whole bootstrap.
type ProcessorError struct {
	Processor string
	Err       error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("beans: post-processor %s failed: %v", e.Processor, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// TypeNotFoundError is returned by a ClassResolver for an unknown class name.
type TypeNotFoundError struct {
	Name string
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("beans: class %q is not registered", e.Name)
}

// ConversionError is returned by a ValueConverter when a raw value cannot be
// coerced to the target type.
type ConversionError struct {
	Raw    any
	Target string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("beans: cannot convert %T(%v) to %s", e.Raw, e.Raw, e.Target)
}
