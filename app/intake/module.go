package intake

import (
	"realtor/core/logger"
	"realtor/core/module"
	"realtor/core/ratelimit"
	"realtor/core/router"
)

// Module serves the public intake form. Its routes hang off the public
// group captured at Init, not the session group handed to Routes.
type Module struct {
	module.DefaultModule
	Service    *IntakeService
	Controller *IntakeController
	public     *router.RouterGroup
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

func Init(deps module.Dependencies) module.Module {
	service := NewIntakeService(deps.DB, deps.Emitter, deps.Logger, deps.Config.IntakeTokenTTL)

	return &Module{
		Service:    service,
		Controller: NewIntakeController(service, deps.Logger),
		public:     deps.PublicRouter,
		limiter:    ratelimit.New(deps.Config, deps.Logger),
		logger:     deps.Logger,
	}
}

func (m *Module) Routes(_ *router.RouterGroup) {
	if m.public == nil {
		m.logger.Warn("No public router; intake routes not registered")
		return
	}
	m.Controller.Routes(m.public, ratelimit.Middleware(m.limiter, m.logger))
}
