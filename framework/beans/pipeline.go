package beans

import (
	"reflect"
)

var (
	registryProcessorType = reflect.TypeOf((*RegistryPostProcessor)(nil)).Elem()
	factoryProcessorType  = reflect.TypeOf((*FactoryPostProcessor)(nil)).Elem()
	instanceProcessorType = reflect.TypeOf((*InstancePostProcessor)(nil)).Elem()
	mergedProcessorType   = reflect.TypeOf((*MergedDefinitionPostProcessor)(nil)).Elem()
	priorityOrderedType   = reflect.TypeOf((*PriorityOrdered)(nil)).Elem()
	orderedType           = reflect.TypeOf((*Ordered)(nil)).Elem()
)

// typeMatches reports whether the instance type of a definition implements
// iface, without instantiating the bean.
func typeMatches(f *Factory, name string, iface reflect.Type) bool {
	it := f.instanceTypeOf(name)
	return it != nil && it.Implements(iface)
}

type namedProcessor struct {
	name string
	pp   FactoryPostProcessor
}

// ── Registry & factory post-processor pipeline ────────────────────────────────

// InvokeFactoryProcessors runs the full pre-instantiation pipeline:
//
//  1. Externally supplied registry post-processors, in supplied order.
//  2. Registry-post-processor definitions that are priority-ordered, sorted.
//  3. Those that are plain-ordered, sorted.
//  4. All remaining ones, re-scanning until a full pass discovers none —
//     a processor registered by an earlier wave is still picked up here.
//
// Afterwards the plain factory callback runs on every registry processor in
// the order they ran, then on the supplied plain processors, then the
// remaining factory-post-processor definitions run in priority/ordered/
// unordered buckets. The merged-definition cache is invalidated at the end.
//
//	// Spring: PostProcessorRegistrationDelegate.invokeBeanFactoryPostProcessors
func InvokeFactoryProcessors(f *Factory, supplied []FactoryPostProcessor) error {
	registry := f.Registry()
	processed := make(map[string]bool)

	var regular []FactoryPostProcessor
	var registryProcs []namedProcessor

	// Wave 1: supplied processors run immediately, before any discovery.
	for _, pp := range supplied {
		if rpp, ok := pp.(RegistryPostProcessor); ok {
			if err := rpp.PostProcessRegistry(registry); err != nil {
				return &ProcessorError{Processor: processorName(rpp), Err: err}
			}
			registryProcs = append(registryProcs, namedProcessor{name: processorName(rpp), pp: rpp})
		} else {
			regular = append(regular, pp)
		}
	}

	invokeWave := func(current []namedProcessor) error {
		SortByOrder(current, func(p namedProcessor) any { return p.pp })
		for _, p := range current {
			if err := p.pp.(RegistryPostProcessor).PostProcessRegistry(registry); err != nil {
				return &ProcessorError{Processor: p.name, Err: err}
			}
		}
		registryProcs = append(registryProcs, current...)
		return nil
	}

	collect := func(match func(name string) bool) ([]namedProcessor, error) {
		var current []namedProcessor
		for _, name := range registry.Names() {
			if processed[name] || !typeMatches(f, name, registryProcessorType) || !match(name) {
				continue
			}
			inst, err := f.GetBean(name)
			if err != nil {
				return nil, &ProcessorError{Processor: name, Err: err}
			}
			processed[name] = true
			current = append(current, namedProcessor{name: name, pp: inst.(RegistryPostProcessor)})
		}
		return current, nil
	}

	// Wave 2: priority-ordered registry processors found as definitions.
	current, err := collect(func(name string) bool { return typeMatches(f, name, priorityOrderedType) })
	if err != nil {
		return err
	}
	if err := invokeWave(current); err != nil {
		return err
	}

	// Wave 3: plain-ordered ones, re-scanned so wave 2 registrations count.
	current, err = collect(func(name string) bool { return typeMatches(f, name, orderedType) })
	if err != nil {
		return err
	}
	if err := invokeWave(current); err != nil {
		return err
	}

	// Wave 4: fixed point over everything left, including processors the
	// previous iterations registered.
	for {
		current, err = collect(func(string) bool { return true })
		if err != nil {
			return err
		}
		if len(current) == 0 {
			break
		}
		if err := invokeWave(current); err != nil {
			return err
		}
	}

	// Plain factory callback on the union of registry processors that ran,
	// in run order, then on the supplied plain processors.
	for _, p := range registryProcs {
		if err := p.pp.PostProcessFactory(f); err != nil {
			return &ProcessorError{Processor: p.name, Err: err}
		}
	}
	for _, pp := range regular {
		if err := pp.PostProcessFactory(f); err != nil {
			return &ProcessorError{Processor: processorName(pp), Err: err}
		}
	}

	if err := invokeFactoryProcessorDefinitions(f, processed); err != nil {
		return err
	}

	// Processors may have rewritten placeholders or property values; cached
	// merged metadata is stale from here.
	registry.ClearMergedCache()
	return nil
}

// invokeFactoryProcessorDefinitions runs the plain factory-post-processor
// definitions not already handled above, in priority/ordered/unordered
// buckets.
func invokeFactoryProcessorDefinitions(f *Factory, processed map[string]bool) error {
	registry := f.Registry()

	var priorityNames, orderedNames, unorderedNames []string
	for _, name := range registry.Names() {
		if processed[name] || !typeMatches(f, name, factoryProcessorType) {
			continue
		}
		switch {
		case typeMatches(f, name, priorityOrderedType):
			priorityNames = append(priorityNames, name)
		case typeMatches(f, name, orderedType):
			orderedNames = append(orderedNames, name)
		default:
			unorderedNames = append(unorderedNames, name)
		}
	}

	invokeBucket := func(names []string, sorted bool) error {
		var bucket []namedProcessor
		for _, name := range names {
			inst, err := f.GetBean(name)
			if err != nil {
				return &ProcessorError{Processor: name, Err: err}
			}
			bucket = append(bucket, namedProcessor{name: name, pp: inst.(FactoryPostProcessor)})
		}
		if sorted {
			SortByOrder(bucket, func(p namedProcessor) any { return p.pp })
		}
		for _, p := range bucket {
			if err := p.pp.PostProcessFactory(f); err != nil {
				return &ProcessorError{Processor: p.name, Err: err}
			}
		}
		return nil
	}

	if err := invokeBucket(priorityNames, true); err != nil {
		return err
	}
	if err := invokeBucket(orderedNames, true); err != nil {
		return err
	}
	return invokeBucket(unorderedNames, false)
}
