package clients

import (
	"errors"
	"net/http"
	"strconv"

	"realtor/app/models"
	"realtor/core/logger"
	"realtor/core/router"
	"realtor/core/types"
)

type ClientController struct {
	service *ClientService
	logger  logger.Logger
}

func NewClientController(service *ClientService, logger logger.Logger) *ClientController {
	return &ClientController{
		service: service,
		logger:  logger,
	}
}

func (c *ClientController) Routes(router *router.RouterGroup) {
	router.GET("/clients", c.List)
	router.POST("/clients", c.Create)
	router.GET("/clients/export", c.Export)
	router.GET("/clients/options", c.Options)
	router.POST("/clients/emails", c.BulkEmails)
	router.GET("/clients/:id", c.Get)
	router.PUT("/clients/:id", c.Update)
	router.DELETE("/clients/:id", c.Archive)
	router.POST("/clients/:id/intake-token", c.IssueIntakeToken)
}

// List godoc
// @Summary List clients
// @Description Non-archived clients matching every token of q, sorted by last then first name
// @Tags App/Clients
// @Produce json
// @Param q query string false "Search query"
// @Success 200 {object} models.ClientListResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /clients [get]
func (c *ClientController) List(ctx *router.Context) error {
	items, err := c.service.List(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch clients"})
	}

	resp := models.ClientListResponse{Items: make([]*models.ClientResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, items[i].ToResponse())
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *ClientController) Options(ctx *router.Context) error {
	items, err := c.service.Options(ctx.Request.Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch clients"})
	}
	return ctx.JSON(http.StatusOK, items)
}

// Get godoc
// @Summary Get a client
// @Tags App/Clients
// @Produce json
// @Param id path int true "Client Id"
// @Success 200 {object} models.ClientResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /clients/{id} [get]
func (c *ClientController) Get(ctx *router.Context) error {
	id, ok := parseId(ctx)
	if !ok {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	item, err := c.service.GetById(ctx.Request.Context(), id)
	if err != nil {
		return c.fail(ctx, err, "fetch")
	}
	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Create godoc
// @Summary Create a client
// @Tags App/Clients
// @Accept json
// @Produce json
// @Param input body models.ClientRequest true "Client"
// @Success 201 {object} models.ClientResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /clients [post]
func (c *ClientController) Create(ctx *router.Context) error {
	var req models.ClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	item, err := c.service.Create(ctx.Request.Context(), &req)
	if err != nil {
		return c.fail(ctx, err, "create")
	}
	return ctx.JSON(http.StatusCreated, item.ToResponse())
}

// Update godoc
// @Summary Replace a client
// @Description Every field is resent; omitted optional fields are cleared
// @Tags App/Clients
// @Accept json
// @Produce json
// @Param id path int true "Client Id"
// @Param input body models.ClientRequest true "Client"
// @Success 200 {object} models.ClientResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /clients/{id} [put]
func (c *ClientController) Update(ctx *router.Context) error {
	id, ok := parseId(ctx)
	if !ok {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	var req models.ClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	item, err := c.service.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		return c.fail(ctx, err, "update")
	}
	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Archive soft-deletes; the client disappears from lists and direct gets.
func (c *ClientController) Archive(ctx *router.Context) error {
	id, ok := parseId(ctx)
	if !ok {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	if err := c.service.Archive(ctx.Request.Context(), id); err != nil {
		return c.fail(ctx, err, "archive")
	}
	return ctx.JSON(http.StatusOK, types.OkResponse{Ok: true})
}

func (c *ClientController) Export(ctx *router.Context) error {
	data, err := c.service.ExportCSV(ctx.Request.Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to export clients"})
	}

	ctx.Header("Content-Disposition", `attachment; filename="contacts_emails.csv"`)
	ctx.Header("Cache-Control", "no-store")
	return ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (c *ClientController) BulkEmails(ctx *router.Context) error {
	var req models.BulkEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	resp, err := c.service.BulkEmails(ctx.Request.Context(), &req)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to collect emails"})
	}
	return ctx.JSON(http.StatusOK, resp)
}

// IssueIntakeToken godoc
// @Summary Issue a single-use intake link
// @Tags App/Clients
// @Produce json
// @Param id path int true "Client Id"
// @Param send query string false "1 to email the link to the client"
// @Success 200 {object} models.IntakeTokenResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /clients/{id}/intake-token [post]
func (c *ClientController) IssueIntakeToken(ctx *router.Context) error {
	id, ok := parseId(ctx)
	if !ok {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	send, _ := strconv.ParseBool(ctx.DefaultQuery("send", "0"))
	resp, err := c.service.IssueIntakeToken(ctx.Request.Context(), id, send)
	if err != nil {
		return c.fail(ctx, err, "issue intake link for")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *ClientController) fail(ctx *router.Context, err error, action string) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrEmailConflict):
		return ctx.JSON(http.StatusConflict, types.ErrorResponse{Error: models.ErrEmailConflict.Error()})
	case errors.Is(err, models.ErrNotFound):
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not found"})
	}
	c.logger.Error("client request failed", logger.Err(err), logger.String("action", action))
	return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to " + action + " client"})
}

func parseId(ctx *router.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
