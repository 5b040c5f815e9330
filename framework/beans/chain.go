package beans

import (
	"go.uber.org/zap"
)

// ── Instance post-processor registration ──────────────────────────────────────

// RegisterInstanceProcessors discovers every instance-post-processor
// definition and registers the chain in invocation order: a synthetic
// completeness checker first, then priority-ordered (sorted), plain-ordered
// (sorted), and unordered processors, then merged-definition-aware ones
// moved to the very end so they see fully wrapped instances, and finally
// the listener detector at the absolute end.
//
//	// Spring: PostProcessorRegistrationDelegate.registerBeanPostProcessors
func RegisterInstanceProcessors(f *Factory) error {
	registry := f.Registry()

	var names []string
	for _, name := range registry.Names() {
		if typeMatches(f, name, instanceProcessorType) {
			names = append(names, name)
		}
	}

	// The checker observes beans that complete initialization while the
	// chain is still being assembled here.
	target := f.ProcessorCount() + 1 + len(names)
	f.AddInstancePostProcessor(&chainChecker{factory: f, target: target, log: f.log})

	var priority, ordered, unordered []namedInstanceProcessor
	var internal []namedInstanceProcessor

	for _, name := range names {
		inst, err := f.GetBean(name)
		if err != nil {
			return &ProcessorError{Processor: name, Err: err}
		}
		np := namedInstanceProcessor{name: name, pp: inst.(InstancePostProcessor)}
		if typeMatches(f, name, mergedProcessorType) {
			internal = append(internal, np)
		}
		switch {
		case typeMatches(f, name, priorityOrderedType):
			priority = append(priority, np)
		case typeMatches(f, name, orderedType):
			ordered = append(ordered, np)
		default:
			unordered = append(unordered, np)
		}
	}

	register := func(nps []namedInstanceProcessor, sorted bool) {
		if sorted {
			SortByOrder(nps, func(p namedInstanceProcessor) any { return p.pp })
		}
		for _, np := range nps {
			f.AddInstancePostProcessor(np.pp)
		}
	}
	register(priority, true)
	register(ordered, true)
	register(unordered, false)
	// Re-registration moves these to the end of the chain.
	register(internal, true)

	f.AddInstancePostProcessor(&listenerDetector{factory: f})
	return nil
}

type namedInstanceProcessor struct {
	name string
	pp   InstancePostProcessor
}

// ── Synthetic processors ──────────────────────────────────────────────────────

// chainChecker flags beans that finish initializing before the processor
// chain reached its target size: such beans were not eligible for every
// intended processor. Purely observational.
//
//	// Spring: BeanPostProcessorChecker
type chainChecker struct {
	factory *Factory
	target  int
	log     *zap.Logger
}

func (c *chainChecker) BeforeInit(bean any, name string) (any, error) { return bean, nil }

func (c *chainChecker) AfterInit(bean any, name string) (any, error) {
	if _, isProcessor := bean.(InstancePostProcessor); isProcessor {
		return bean, nil
	}
	if c.isInfrastructure(name) {
		return bean, nil
	}
	if c.factory.ProcessorCount() < c.target {
		c.log.Info("bean initialized before the processor chain was complete; "+
			"it was not eligible for all instance post-processors",
			zap.String("bean", name))
	}
	return bean, nil
}

func (c *chainChecker) isInfrastructure(name string) bool {
	def, err := c.factory.Registry().Merged(c.factory.Registry().Canonical(name))
	return err == nil && def.Role == RoleInfrastructure
}

// listenerDetector collects singleton beans implementing Listener once they
// are fully processed, so container events reach proxied instances too.
//
//	// Spring: ApplicationListenerDetector
type listenerDetector struct {
	factory *Factory
}

func (d *listenerDetector) BeforeInit(bean any, name string) (any, error) { return bean, nil }

func (d *listenerDetector) AfterInit(bean any, name string) (any, error) {
	l, ok := bean.(Listener)
	if !ok {
		return bean, nil
	}
	reg := d.factory.Registry()
	if def, err := reg.Merged(reg.Canonical(name)); err == nil && def.ScopeOrDefault() == ScopeSingleton {
		d.factory.addListener(l)
	}
	return bean, nil
}
