package app

import (
	"realtor/app/clients"
	"realtor/app/intake"
	"realtor/app/properties"
	"realtor/app/uploads"
	"realtor/core/app/search"
	"realtor/core/module"
)

// AppModules provides the CRM modules and registers the searchable ones
type AppModules struct {
	SearchRegistry *search.SearchRegistry
}

func NewAppModules(searchRegistry *search.SearchRegistry) *AppModules {
	return &AppModules{
		SearchRegistry: searchRegistry,
	}
}

// Modules implements module.Provider
func (am *AppModules) Modules(deps module.Dependencies) map[string]module.Module {
	clientsModule := clients.Init(deps).(*clients.Module)
	propertiesModule := properties.Init(deps).(*properties.Module)

	if am.SearchRegistry != nil {
		am.SearchRegistry.Register("clients", clientsModule.Service.Search)
		am.SearchRegistry.Register("properties", propertiesModule.Service.Search)
	}

	return map[string]module.Module{
		"clients":    clientsModule,
		"properties": propertiesModule,
		"intake":     intake.Init(deps),
		"uploads":    uploads.Init(deps),
	}
}
