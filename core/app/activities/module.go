package activities

import (
	"realtor/core/emitter"
	"realtor/core/module"
	"realtor/core/router"

	"gorm.io/gorm"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Emitter    *emitter.Emitter
	Service    *ActivityService
	Controller *ActivityController
}

// Init creates the activities module. Recording starts in Module.Init,
// after the table exists.
func Init(deps module.Dependencies) module.Module {
	service := NewActivityService(deps.DB, deps.Logger)
	return &Module{
		DB:         deps.DB,
		Emitter:    deps.Emitter,
		Service:    service,
		Controller: NewActivityController(service),
	}
}

func (m *Module) Init() error {
	m.Service.Subscribe(m.Emitter)
	return nil
}

func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&Activity{})
}

func (m *Module) GetModels() []any {
	return []any{
		&Activity{},
	}
}
