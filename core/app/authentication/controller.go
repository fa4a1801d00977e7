package authentication

import (
	"net/http"

	"realtor/core/logger"
	"realtor/core/router"
	"realtor/core/types"
)

type LoginRequest struct {
	Email string `json:"email" binding:"required"`
	Pass  string `json:"pass" binding:"required"`
}

type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

type AuthController struct {
	service *AuthService
	config  *SessionConfig
	logger  logger.Logger
}

func NewAuthController(service *AuthService, config *SessionConfig, logger logger.Logger) *AuthController {
	return &AuthController{
		service: service,
		config:  config,
		logger:  logger,
	}
}

func (c *AuthController) Routes(router *router.RouterGroup) {
	router.POST("/auth/login", c.Login)
	router.POST("/auth/logout", c.Logout)
	router.GET("/auth/session", c.Session)
}

// Login godoc
// @Summary Admin login
// @Description Checks the admin credential and sets the session cookie
// @Tags Core/Auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "Credentials"
// @Success 200 {object} types.OkResponse
// @Failure 401 {object} types.ErrorResponse
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *router.Context) error {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Invalid credentials"})
	}

	token, err := c.service.Login(req.Email, req.Pass)
	if err != nil {
		c.logger.Warn("Failed login", logger.String("ip", ctx.ClientIP()))
		return ctx.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Invalid credentials"})
	}

	ctx.SetCookie(c.cookie(token, int(c.config.TTL.Seconds())))
	return ctx.JSON(http.StatusOK, types.OkResponse{Ok: true})
}

func (c *AuthController) Logout(ctx *router.Context) error {
	ctx.SetCookie(c.cookie("", -1))
	return ctx.JSON(http.StatusOK, types.OkResponse{Ok: true})
}

func (c *AuthController) Session(ctx *router.Context) error {
	token, err := ctx.Cookie(CookieName)
	if err != nil {
		return ctx.JSON(http.StatusOK, SessionResponse{})
	}
	_, err = c.service.Verify(token)
	return ctx.JSON(http.StatusOK, SessionResponse{Authenticated: err == nil})
}

func (c *AuthController) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
