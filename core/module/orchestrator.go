package module

// Provider supplies a set of modules built from the shared dependencies
type Provider interface {
	Modules(deps Dependencies) map[string]Module
}

// Orchestrator initialises the modules of one provider
type Orchestrator struct {
	initializer *Initializer
	provider    Provider
}

func NewOrchestrator(initializer *Initializer, provider Provider) *Orchestrator {
	return &Orchestrator{
		initializer: initializer,
		provider:    provider,
	}
}

// Run builds and initialises the provider's modules
func (o *Orchestrator) Run(deps Dependencies) []Module {
	modules := o.provider.Modules(deps)
	if len(modules) == 0 {
		return nil
	}
	return o.initializer.Initialize(modules, deps)
}
