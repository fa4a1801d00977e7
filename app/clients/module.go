package clients

import (
	"realtor/app/models"
	"realtor/core/module"
	"realtor/core/router"

	"gorm.io/gorm"
)

type Module struct {
	module.DefaultModule
	DB         *gorm.DB
	Service    *ClientService
	Controller *ClientController
}

// Init creates the clients module with its service and controller
func Init(deps module.Dependencies) module.Module {
	service := NewClientService(deps.DB, deps.Emitter, deps.EmailSender, deps.Logger, deps.Config.PublicBaseURL)
	controller := NewClientController(service, deps.Logger)

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
	return m.DB.AutoMigrate(&models.Client{})
}

func (m *Module) GetModels() []any {
	return []any{
		&models.Client{},
	}
}
