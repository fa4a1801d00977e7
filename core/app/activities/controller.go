package activities

import (
	"net/http"
	"strconv"

	"realtor/core/router"
	"realtor/core/types"
)

type ActivityController struct {
	Service *ActivityService
}

func NewActivityController(service *ActivityService) *ActivityController {
	return &ActivityController{
		Service: service,
	}
}

func (c *ActivityController) Routes(router *router.RouterGroup) {
	router.GET("/activities", c.List)
	router.GET("/activities/recent", c.GetRecent)
}

// List godoc
// @Summary Activity history of a record
// @Tags Core/Activity
// @Produce json
// @Param entity_type query string true "Entity type, e.g. clients"
// @Param entity_id query int false "Entity id"
// @Param page query int false "Page number"
// @Param limit query int false "Number of items per page"
// @Success 200 {object} types.PaginatedResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /activities [get]
func (c *ActivityController) List(ctx *router.Context) error {
	var page, limit *int

	entityType := ctx.Query("entity_type")
	if entityType == "" {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "entity_type is required"})
	}

	var entityId uint
	if idStr := ctx.Query("entity_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
		}
		entityId = uint(id)
	}

	if pageStr := ctx.Query("page"); pageStr != "" {
		if pageNum, err := strconv.Atoi(pageStr); err == nil && pageNum > 0 {
			page = &pageNum
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid page number"})
		}
	}

	if limitStr := ctx.Query("limit"); limitStr != "" {
		if limitNum, err := strconv.Atoi(limitStr); err == nil && limitNum > 0 {
			limit = &limitNum
		} else {
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid limit number"})
		}
	}

	items, err := c.Service.ForEntity(ctx.Request.Context(), entityType, entityId)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch activities"})
	}

	responses := make([]*ActivityListResponse, len(items))
	for i := range items {
		responses[i] = items[i].ToListResponse()
	}
	data, pagination := types.Paginate(responses, page, limit)
	return ctx.JSON(http.StatusOK, types.PaginatedResponse{Data: data, Pagination: pagination})
}

// GetRecent godoc
// @Summary Recent activities
// @Tags Core/Activity
// @Produce json
// @Param limit query int false "Number of activities to return (default 10, max 100)"
// @Success 200 {array} Activity
// @Failure 500 {object} types.ErrorResponse
// @Router /activities/recent [get]
func (c *ActivityController) GetRecent(ctx *router.Context) error {
	limit := 10
	if parsed, err := strconv.Atoi(ctx.Query("limit")); err == nil && parsed > 0 {
		limit = parsed
	}

	items, err := c.Service.Recent(ctx.Request.Context(), limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to get recent activities"})
	}
	return ctx.JSON(http.StatusOK, items)
}
