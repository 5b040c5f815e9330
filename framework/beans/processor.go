package beans

// ── Extension points ──────────────────────────────────────────────────────────

// FactoryPostProcessor runs after all definitions are registered but before
// any bean is instantiated. It may rewrite definition metadata but must not
// trigger bean creation.
//
//	// Spring: BeanFactoryPostProcessor
type FactoryPostProcessor interface {
	PostProcessFactory(f *Factory) error
}

// RegistryPostProcessor extends FactoryPostProcessor with a registry-mutating
// callback that runs first and may add, replace, or remove definitions —
// including definitions of further RegistryPostProcessors, which are picked
// up by the pipeline's fixed-point wave.
//
//	// Spring: BeanDefinitionRegistryPostProcessor
type RegistryPostProcessor interface {
	FactoryPostProcessor
	PostProcessRegistry(r *Registry) error
}

// InstancePostProcessor wraps or observes every bean around its
// initialization callback. Either hook may return a replacement object
// (a proxy, say) which becomes the bean from that point on; returning nil
// keeps the current instance.
//
//	// Spring: BeanPostProcessor
type InstancePostProcessor interface {
	BeforeInit(bean any, name string) (any, error)
	AfterInit(bean any, name string) (any, error)
}

// MergedDefinitionPostProcessor additionally sees each bean's merged
// definition right before instantiation. Processors of this kind are
// re-registered at the very end of the chain so they observe the fully
// wrapped instance.
//
//	// Spring: MergedBeanDefinitionPostProcessor
type MergedDefinitionPostProcessor interface {
	InstancePostProcessor
	PostProcessMergedDefinition(def *Definition, name string) error
}

// ── Lifecycle callbacks ───────────────────────────────────────────────────────

// Initializer is invoked after property population, before any named
// init method declared on the definition.
//
//	// Spring: InitializingBean.afterPropertiesSet
type Initializer interface {
	Init() error
}

// Disposable is invoked when the container is closed, before any named
// destroy method declared on the definition.
//
//	// Spring: DisposableBean.destroy
type Disposable interface {
	Destroy() error
}

// ── Container events ──────────────────────────────────────────────────────────

// Event is a coarse container lifecycle notification.
type Event int

const (
	// EventBootstrapped fires once the full bootstrap sequence completed.
	EventBootstrapped Event = iota
	// EventClosing fires before singletons are destroyed.
	EventClosing
)

// Listener receives container events. Singleton beans implementing Listener
// are collected automatically by the listener-detection processor appended
// at the absolute end of the instance-processor chain.
//
//	// Spring: ApplicationListener + ApplicationListenerDetector
type Listener interface {
	OnContainerEvent(e Event)
}
