package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/middleware"
	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/service/notification"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/httputil"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

// CreateNotification fans a notification out to a user or a whole
// role.
func (h *Handler) CreateNotification(c *gin.Context) {
	var req model.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	claims := middleware.ClaimsFromContext(c)
	created, err := h.service.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, gin.H{
		"count":         len(created),
		"notifications": created,
	})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	var filter model.NotificationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	claims := middleware.ClaimsFromContext(c)
	notifications, total, err := h.service.ListForUser(c.Request.Context(), claims, &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, notifications, filter.Page, filter.PageSize, total)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid notification ID"))
		return
	}

	updated, err := h.service.MarkRead(c.Request.Context(), id, middleware.ClaimsFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), middleware.ClaimsFromContext(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "all notifications marked as read", nil)
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid notification ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.ClaimsFromContext(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "notification deleted", nil)
}
