package notifications

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
	Service    *NotificationService
	Controller *NotificationController
}

// Init creates the notifications module; intake events feed it once Init
// has run
func Init(deps module.Dependencies) module.Module {
	var adminEmail string
	if deps.Config != nil {
		adminEmail = deps.Config.AdminEmail
	}

	service := NewNotificationService(deps.DB, deps.Emitter, deps.EmailSender, deps.Logger, adminEmail)
	return &Module{
		DB:         deps.DB,
		Emitter:    deps.Emitter,
		Service:    service,
		Controller: NewNotificationController(service),
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
	return m.DB.AutoMigrate(&Notification{})
}

func (m *Module) GetModels() []any {
	return []any{
		&Notification{},
	}
}
