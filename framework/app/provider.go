package app

// ── Provider interface ────────────────────────────────────────────────────────

// Provider registers bean types and definitions programmatically, as an
// alternative (or complement) to declarative descriptors.
//
// Register runs before Bootstrap: bind types and definitions, do NOT resolve
// beans. Boot runs after the container is bootstrapped, so resolving other
// beans there is safe.
//
//	type RepoProvider struct{ app.BaseProvider }
//
//	func (p *RepoProvider) Register(a *app.Application) error {
//	    if err := a.Types.RegisterType("app.SQLRepo", &SQLRepo{}); err != nil {
//	        return err
//	    }
//	    return a.Register("repo", beans.NewDefinition("app.SQLRepo"))
//	}
//
//	func (p *RepoProvider) Boot(a *app.Application) error {
//	    repo := beans.MustResolve[*SQLRepo](a.Factory, "repo")
//	    return repo.Ping()
//	}
type Provider interface {
	// Register binds types and definitions into the container.
	Register(a *Application) error

	// Boot is called after Bootstrap completes.
	Boot(a *Application) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot. Embed it and
// override only what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Application) error { return nil }

// RegisterProvider runs the provider's Register phase immediately and queues
// its Boot phase for the end of Bootstrap. Registering the same provider
// twice is a no-op.
func (a *Application) RegisterProvider(p Provider) error {
	for _, existing := range a.providers {
		if existing == p {
			return nil
		}
	}
	if err := p.Register(a); err != nil {
		return err
	}
	a.providers = append(a.providers, p)
	// Late registration after bootstrap boots the provider immediately.
	if a.Bootstrapped() {
		return p.Boot(a)
	}
	return nil
}

func (a *Application) bootProviders() error {
	for _, p := range a.providers {
		if err := p.Boot(a); err != nil {
			return err
		}
	}
	return nil
}
