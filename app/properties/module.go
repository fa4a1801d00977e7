package properties

import (
	"realtor/app/models"
	"realtor/core/module"
	"realtor/core/router"

	"gorm.io/gorm"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *PropertyService
	Controller *PropertyController
}

func Init(deps module.Dependencies) module.Module {
	service := NewPropertyService(deps.DB, deps.Emitter, deps.Storage, deps.Logger, deps.Config.UploadMaxBytes)
	controller := NewPropertyController(service, deps.Logger)

	return &Module{
		DB:         deps.DB,
		Service:    service,
		Controller: controller,
	}
}

func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

func (m *Module) Migrate() error {
	return m.DB.AutoMigrate(&models.Property{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Property{},
	}
}
