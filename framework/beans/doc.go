// Package beans provides a Spring-style IoC (Inversion of Control)
// container core for Go: declarative bean definitions, a mutable
// definition registry with aliases and generated names, ordered
// post-processor pipelines, and an instantiation engine with dependency
// resolution and circular-dependency handling.
//
// # Overview
//
// The container turns a set of declarative definitions into a fully wired,
// lifecycle-managed object graph. Definitions describe what to build; an
// explicitly populated TypeRegistry supplies the Go types and constructors
// (Go has no classpath scanning), and the Factory builds instances on
// demand, caching singletons.
//
// # Bootstrap protocol
//
//  1. Register definitions:      registry.Register("cache", def)
//  2. Run the pipelines:         InvokeFactoryProcessors(factory, supplied)
//  3. Freeze the registry:       registry.Freeze()
//  4. Register instance hooks:   RegisterInstanceProcessors(factory)
//  5. Resolve beans:             factory.GetBean("cache")
//
// The framework/app kernel drives these steps; use it unless you need the
// pieces individually.
//
// # Definitions
//
//	// Spring: <bean id="repo" class="app.UserRepository" scope="singleton"/>
//	def := beans.NewDefinition("app.UserRepository")
//	def.SetProperty("Timeout", beans.Literal{Raw: "30"})
//	def.SetProperty("Store", beans.Ref{Name: "store"})
//	registry.Register("repo", def)
//
// A definition may inherit from a parent; the flattened result is computed
// by Registry.Merged and cached until the factory-post-processor phase
// invalidates it.
//
// # Post-processors
//
// Three extension points run in a fixed, deterministic order:
//
//   - RegistryPostProcessor — mutates definitions before anything exists.
//     Runs in four waves: supplied, priority-ordered, ordered, then a
//     fixed-point sweep over late registrations.
//   - FactoryPostProcessor — adjusts resolved metadata after definitions
//     are final, before instantiation.
//   - InstancePostProcessor — wraps every instance around its init
//     callback; either hook may substitute a replacement (a proxy, say).
//
// Ordering within each pipeline follows PriorityOrdered > Ordered >
// unordered, rank ascending, discovery order on ties.
//
// # Cycles
//
// Constructor-injection cycles are fatal and reported with the full chain
// of names under construction. Property-injection cycles are resolved by
// exposing an early reference to the raw instance before its properties
// are populated, so a dependent that loops back can finish wiring.
//
// # Resolving
//
//	// Untyped
//	raw, err := factory.GetBean("repo")
//
//	// Generic (no type assertion required)
//	repo, err := beans.Resolve[*UserRepository](factory, "repo")
package beans
