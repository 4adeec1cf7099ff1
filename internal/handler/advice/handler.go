package advice

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/middleware"
	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/service/advice"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/httputil"
)

type Handler struct {
	service *advice.Service
}

func NewHandler(service *advice.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateAdvice(c *gin.Context) {
	var req model.CreateAdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.ClaimsFromContext(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetAdvice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid advice ID"))
		return
	}

	a, err := h.service.Get(c.Request.Context(), id, middleware.ClaimsFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
}

// ListAdvice returns all advice for staff triage, urgent first.
func (h *Handler) ListAdvice(c *gin.Context) {
	records, err := h.service.List(c.Request.Context(), model.AdviceStatus(c.Query("status")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) ListAdviceByUrgency(c *gin.Context) {
	records, err := h.service.ListByUrgency(c.Request.Context(), model.Urgency(c.Param("level")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

// ListMyAdvice returns the authenticated patient's full history.
func (h *Handler) ListMyAdvice(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	records, err := h.service.ListForPatient(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

// ListMyRecommendations returns only the patient's approved advice.
func (h *Handler) ListMyRecommendations(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	records, err := h.service.Recommendations(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) ApproveAdvice(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

func (h *Handler) RejectAdvice(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

func (h *Handler) decide(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*model.Advice, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid advice ID"))
		return
	}

	updated, err := fn(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) UpdateAdvice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid advice ID"))
		return
	}

	var req model.UpdateAdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, middleware.ClaimsFromContext(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteAdvice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid advice ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.ClaimsFromContext(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "advice deleted", nil)
}
