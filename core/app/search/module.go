package search

import (
	"realtor/core/module"
	"realtor/core/router"
)

type Module struct {
	module.DefaultModule
	Service    *SearchService
	Controller *SearchController
	Registry   *SearchRegistry
}

// Init creates the search module. The registry is filled by the app
// provider, see app.SearchRegistry.
func Init(deps module.Dependencies, registry *SearchRegistry) module.Module {
	if registry == nil {
		registry = NewSearchRegistry()
	}

	service := NewSearchService(deps.Logger, registry)
	return &Module{
		Service:    service,
		Controller: NewSearchController(service),
		Registry:   registry,
	}
}

func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}
