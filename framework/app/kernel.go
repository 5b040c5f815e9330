package app

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/beans"
	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/logging"
)

// ErrAlreadyBootstrapped is returned when Bootstrap is called a second time;
// the bootstrap sequence must run exactly once per container lifetime.
var ErrAlreadyBootstrapped = errors.New("app: container already bootstrapped")

// Application is the top-level container kernel. It owns the definition
// registry, the type registry, and the bean factory, and drives the full
// bootstrap sequence.
type Application struct {
	ID string

	Registry *beans.Registry
	Types    *beans.TypeRegistry
	Factory  *beans.Factory

	cfg *config.Config
	log *zap.Logger

	factoryProcessors []beans.FactoryPostProcessor
	providers         []Provider
	bootstrapped      atomic.Bool
}

// New creates a container kernel, loading configuration from .env files.
func New(envFiles ...string) *Application {
	cfg := config.Load(envFiles...)
	id := uuid.NewString()
	log := logging.New(cfg.App.Env).With(zap.String("container_id", id))

	registry := beans.NewRegistry()
	types := beans.NewTypeRegistry()
	factory := beans.NewFactory(registry, types, log)
	factory.SetAllowCircularReferences(cfg.Container.AllowCircular)

	return &Application{
		ID:       id,
		Registry: registry,
		Types:    types,
		Factory:  factory,
		cfg:      cfg,
		log:      log,
	}
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the container logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Register stores a definition in the registry.
func (a *Application) Register(name string, def *beans.Definition) error {
	return a.Registry.Register(name, def)
}

// RegisterAlias binds an alternate name to a bean.
func (a *Application) RegisterAlias(name, alias string) error {
	return a.Registry.RegisterAlias(name, alias)
}

// Load feeds all definitions produced by a source into the registry.
// Anonymous definitions get generated names.
func (a *Application) Load(src beans.DefinitionSource, descriptor any) error {
	defs, err := src.Load(descriptor)
	if err != nil {
		return err
	}
	for _, nd := range defs {
		name := nd.Name
		if name == "" {
			if name, err = a.Registry.GenerateName(nd.Definition, false); err != nil {
				return err
			}
		}
		if err := a.Registry.Register(name, nd.Definition); err != nil {
			return err
		}
		for _, alias := range nd.Aliases {
			if err := a.Registry.RegisterAlias(name, alias); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddFactoryPostProcessor supplies a processor to the bootstrap pipeline.
// Registry post-processors among them run first, in supplied order.
func (a *Application) AddFactoryPostProcessor(pp beans.FactoryPostProcessor) {
	a.factoryProcessors = append(a.factoryProcessors, pp)
}

// AddInstancePostProcessor appends a processor to the factory's chain.
func (a *Application) AddInstancePostProcessor(pp beans.InstancePostProcessor) {
	a.Factory.AddInstancePostProcessor(pp)
}

// Bootstrap executes the container startup sequence: the registry and
// factory post-processor pipelines, registry freeze, instance-processor
// chain registration, eager singleton pre-instantiation, the bootstrapped
// event, and provider boot. It runs exactly once; any failure aborts startup.
func (a *Application) Bootstrap() error {
	if !a.bootstrapped.CompareAndSwap(false, true) {
		return ErrAlreadyBootstrapped
	}

	if err := beans.InvokeFactoryProcessors(a.Factory, a.factoryProcessors); err != nil {
		return err
	}
	a.Registry.Freeze()

	if err := beans.RegisterInstanceProcessors(a.Factory); err != nil {
		return err
	}

	if a.cfg.Container.EagerInit {
		if err := a.Factory.PreInstantiateSingletons(); err != nil {
			return err
		}
	}

	a.Factory.NotifyListeners(beans.EventBootstrapped)

	if err := a.bootProviders(); err != nil {
		return err
	}
	a.log.Info("container bootstrapped",
		zap.Int("definitions", a.Registry.Len()),
		zap.Int("instance_processors", a.Factory.ProcessorCount()))
	return nil
}

// Bootstrapped reports whether Bootstrap has run.
func (a *Application) Bootstrapped() bool { return a.bootstrapped.Load() }

// GetBean resolves a bean by name or alias.
func (a *Application) GetBean(name string) (any, error) {
	return a.Factory.GetBean(name)
}

// Close notifies listeners and destroys all singletons in reverse creation
// order.
func (a *Application) Close() {
	a.Factory.NotifyListeners(beans.EventClosing)
	a.Factory.DestroySingletons()
	a.log.Info("container closed")
	_ = a.log.Sync()
}
