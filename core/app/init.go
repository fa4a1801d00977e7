package app

import (
	"realtor/core/app/activities"
	"realtor/core/app/notifications"
	"realtor/core/app/search"
	"realtor/core/module"
)

// CoreModules provides the framework modules mounted on the session group.
// Authentication is wired separately in main because its routes must stay
// outside the session check.
type CoreModules struct {
	SearchRegistry *search.SearchRegistry
}

func NewCoreModules(searchRegistry *search.SearchRegistry) *CoreModules {
	return &CoreModules{
		SearchRegistry: searchRegistry,
	}
}

// Modules implements module.Provider
func (cm *CoreModules) Modules(deps module.Dependencies) map[string]module.Module {
	return map[string]module.Module{
		"search":        search.Init(deps, cm.SearchRegistry),
		"activities":    activities.Init(deps),
		"notifications": notifications.Init(deps),
	}
}
