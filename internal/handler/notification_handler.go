package handler

import (
	"net/http"

	"taskflow/internal/middleware"
	"taskflow/internal/service"
	"taskflow/pkg/pagination"
	"taskflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", middleware.RequireRole(), h.ListNotifications)
		notifications.PUT("/:id/read", middleware.RequireRole(), h.MarkAsRead)
	}
}

// ListNotifications returns the acting user's notifications, newest first
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query     bool  false  "Unread only"
// @Success      200     {object}  response.Response{data=response.List}
// @Router       /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	params := pagination.Parse(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.List(c.Request.Context(), actorID, unreadOnly, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, notifications, total, params.Page, params.Limit))
}

// MarkAsRead flips one notification to read; idempotent for the recipient
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkAsRead(c.Request.Context(), actorID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, notification))
}
