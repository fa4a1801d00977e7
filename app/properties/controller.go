package properties

import (
	"errors"
	"net/http"
	"strconv"

	"realtor/app/models"
	"realtor/core/logger"
	"realtor/core/router"
	"realtor/core/storage"
	"realtor/core/types"
)

type PropertyController struct {
	service *PropertyService
	logger  logger.Logger
}

func NewPropertyController(service *PropertyService, logger logger.Logger) *PropertyController {
	return &PropertyController{
		service: service,
		logger:  logger,
	}
}

func (c *PropertyController) Routes(router *router.RouterGroup) {
	router.GET("/properties", c.List)
	router.POST("/properties", c.Create)
	router.GET("/properties/:id", c.Get)
	router.PUT("/properties/:id", c.Update)
	router.DELETE("/properties/:id", c.Archive)
	router.PUT("/properties/:id/image", c.UploadImage)
}

// List godoc
// @Summary List properties
// @Tags App/Properties
// @Produce json
// @Param q query string false "Search query"
// @Success 200 {object} models.PropertyListResponse
// @Router /properties [get]
func (c *PropertyController) List(ctx *router.Context) error {
	items, err := c.service.List(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch properties"})
	}

	resp := models.PropertyListResponse{Items: make([]*models.PropertyResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, items[i].ToResponse())
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *PropertyController) Get(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	item, err := c.service.GetById(ctx.Request.Context(), uint(id))
	if err != nil {
		return c.fail(ctx, err, "fetch")
	}
	return ctx.JSON(http.StatusOK, item.ToResponse())
}

// Create godoc
// @Summary Create a property
// @Tags App/Properties
// @Accept json
// @Produce json
// @Param input body models.PropertyRequest true "Property"
// @Success 201 {object} models.PropertyResponse
// @Failure 400 {object} types.ErrorResponse
// @Router /properties [post]
func (c *PropertyController) Create(ctx *router.Context) error {
	var req models.PropertyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	item, err := c.service.Create(ctx.Request.Context(), &req)
	if err != nil {
		return c.fail(ctx, err, "create")
	}
	return ctx.JSON(http.StatusCreated, item.ToResponse())
}

func (c *PropertyController) Update(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	var req models.PropertyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input: " + err.Error()})
	}

	item, err := c.service.Update(ctx.Request.Context(), uint(id), &req)
	if err != nil {
		return c.fail(ctx, err, "update")
	}
	return ctx.JSON(http.StatusOK, item.ToResponse())
}

func (c *PropertyController) Archive(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	if err := c.service.Archive(ctx.Request.Context(), uint(id)); err != nil {
		return c.fail(ctx, err, "archive")
	}
	return ctx.JSON(http.StatusOK, types.OkResponse{Ok: true})
}

// UploadImage godoc
// @Summary Replace the property image
// @Tags App/Properties
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Property Id"
// @Param file formData file true "Image"
// @Success 200 {object} models.PropertyResponse
// @Failure 413 {object} types.ErrorResponse
// @Router /properties/{id}/image [put]
func (c *PropertyController) UploadImage(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	file, err := ctx.FormFile("file")
	if errors.Is(err, router.ErrBodyTooLarge) {
		return ctx.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: "Request too large"})
	}
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Missing file"})
	}

	item, err := c.service.AttachImage(ctx.Request.Context(), uint(id), file)
	if err != nil {
		var tooLarge *storage.FileTooLargeError
		if errors.As(err, &tooLarge) {
			return ctx.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: storage.ImageTooLargeMessage(tooLarge.Size)})
		}
		if errors.Is(err, storage.ErrExtensionNotAllowed) {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		}
		return c.fail(ctx, err, "upload image for")
	}
	return ctx.JSON(http.StatusOK, item.ToResponse())
}

func (c *PropertyController) fail(ctx *router.Context, err error, action string) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not found"})
	}
	c.logger.Error("property request failed", logger.Err(err), logger.String("action", action))
	return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to " + action + " property"})
}
