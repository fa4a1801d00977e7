package intake

import (
	"errors"
	"net/http"

	"realtor/app/models"
	"realtor/core/logger"
	"realtor/core/router"
	"realtor/core/types"
)

type IntakeController struct {
	service *IntakeService
	logger  logger.Logger
}

func NewIntakeController(service *IntakeService, logger logger.Logger) *IntakeController {
	return &IntakeController{
		service: service,
		logger:  logger,
	}
}

// Routes registers the public form endpoints; they need no session.
func (c *IntakeController) Routes(group *router.RouterGroup, middleware ...router.MiddlewareFunc) {
	intake := group.Group("/intake", middleware...)
	intake.POST("", c.Submit)
	intake.GET("/:token", c.Prefill)
	intake.POST("/:token", c.SubmitWithToken)
}

// Submit godoc
// @Summary Open intake form
// @Description Creates a client, or updates the client that already owns the email
// @Tags Public/Intake
// @Accept json
// @Produce json
// @Param agent query string false "Pre-assigned agent"
// @Param input body models.IntakeRequest true "Intake"
// @Success 200 {object} models.IntakeResult
// @Failure 400 {object} types.ErrorResponse
// @Failure 413 {object} types.ErrorResponse
// @Failure 429 {object} types.ErrorResponse
// @Router /public/intake [post]
func (c *IntakeController) Submit(ctx *router.Context) error {
	var req models.IntakeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return c.badInput(ctx, err)
	}

	result, err := c.service.Submit(ctx.Request.Context(), &req, ctx.Query("agent"))
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, result)
}

func (c *IntakeController) Prefill(ctx *router.Context) error {
	prefill, err := c.service.Prefill(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		return c.fail(ctx, err)
	}
	ctx.Header("Cache-Control", "no-store")
	return ctx.JSON(http.StatusOK, prefill)
}

// SubmitWithToken godoc
// @Summary Token holder updates their own record
// @Tags Public/Intake
// @Accept json
// @Produce json
// @Param token path string true "Intake token"
// @Param input body models.IntakeRequest true "Intake"
// @Success 200 {object} models.IntakeResult
// @Failure 404 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /public/intake/{token} [post]
func (c *IntakeController) SubmitWithToken(ctx *router.Context) error {
	var req models.IntakeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return c.badInput(ctx, err)
	}

	result, err := c.service.SubmitWithToken(ctx.Request.Context(), ctx.Param("token"), &req)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, result)
}

func (c *IntakeController) badInput(ctx *router.Context, err error) error {
	if errors.Is(err, router.ErrBodyTooLarge) {
		return ctx.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: "Request too large"})
	}
	return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
}

func (c *IntakeController) fail(ctx *router.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrEmailConflict):
		return ctx.JSON(http.StatusConflict, types.ErrorResponse{Error: models.ErrEmailConflict.Error()})
	case errors.Is(err, models.ErrNotFound):
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not found"})
	}
	return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to save intake"})
}
