package authentication

import (
	"realtor/core/config"
	"realtor/core/logger"
	"realtor/core/module"
	"realtor/core/router"
)

// AuthenticationModule owns the admin session. Its routes must be
// registered outside the session-protected group.
type AuthenticationModule struct {
	module.DefaultModule
	Config     *SessionConfig
	Service    *AuthService
	Controller *AuthController
}

func NewAuthenticationModule(cfg *config.Config, log logger.Logger) (*AuthenticationModule, error) {
	sc, err := LoadConfig(cfg)
	if err != nil {
		return nil, err
	}
	if sc.AdminEmail == "" || len(sc.PasswordHash) == 0 {
		log.Warn("ADMIN_EMAIL and ADMIN_PASS (or ADMIN_PASS_HASH) are not set; login is disabled")
	}

	service := NewAuthService(sc, log)
	return &AuthenticationModule{
		Config:     sc,
		Service:    service,
		Controller: NewAuthController(service, sc, log),
	}, nil
}

func (m *AuthenticationModule) Routes(router *router.RouterGroup) {
	m.Controller.Routes(router)
}

// Middleware guards a group behind the session cookie
func (m *AuthenticationModule) Middleware() router.MiddlewareFunc {
	return RequireSession(m.Service)
}
