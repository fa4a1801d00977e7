package uploads

import (
	"realtor/core/module"
	"realtor/core/router"
)

type Module struct {
	module.DefaultModule
	Service    *UploadService
	Controller *UploadController
}

func Init(deps module.Dependencies) module.Module {
	service := NewUploadService(deps.Storage, deps.Emitter, deps.Logger, deps.Config.UploadMaxBytes)
	return &Module{
		Service:    service,
		Controller: NewUploadController(service, deps.Logger),
	}
}

func (m *Module) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}
