package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"realtor/core/router"
	"realtor/core/types"
)

type NotificationController struct {
	Service *NotificationService
}

func NewNotificationController(service *NotificationService) *NotificationController {
	return &NotificationController{
		Service: service,
	}
}

func (c *NotificationController) Routes(router *router.RouterGroup) {
	router.GET("/notifications", c.List)
	router.GET("/notifications/unread-count", c.UnreadCount)
	router.PUT("/notifications/read-all", c.MarkAllRead)
	router.PUT("/notifications/:id/read", c.MarkRead)
}

// List godoc
// @Summary Admin notifications, newest first
// @Tags Core/Notification
// @Produce json
// @Param unread query bool false "Only unread"
// @Success 200 {array} Notification
// @Failure 500 {object} types.ErrorResponse
// @Router /notifications [get]
func (c *NotificationController) List(ctx *router.Context) error {
	unread, _ := strconv.ParseBool(ctx.DefaultQuery("unread", "false"))

	items, err := c.Service.List(ctx.Request.Context(), unread)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch notifications"})
	}
	return ctx.JSON(http.StatusOK, items)
}

func (c *NotificationController) UnreadCount(ctx *router.Context) error {
	count, err := c.Service.UnreadCount(ctx.Request.Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to count notifications"})
	}
	return ctx.JSON(http.StatusOK, UnreadCountResponse{Unread: count})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Core/Notification
// @Produce json
// @Param id path int true "Notification id"
// @Success 200 {object} Notification
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *router.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid Id format"})
	}

	item, err := c.Service.MarkRead(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update notification"})
	}
	return ctx.JSON(http.StatusOK, item)
}

func (c *NotificationController) MarkAllRead(ctx *router.Context) error {
	if _, err := c.Service.MarkAllRead(ctx.Request.Context()); err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to update notifications"})
	}
	return ctx.JSON(http.StatusOK, types.OkResponse{Ok: true})
}
