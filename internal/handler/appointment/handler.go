package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/middleware"
	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/service/appointment"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

// CreateAppointment books a slot for the authenticated patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	claims := middleware.ClaimsFromContext(c)
	apt, err := h.service.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id, middleware.ClaimsFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

// ListAppointments returns all appointments for staff; physicians see
// only their own schedule.
func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context(), middleware.ClaimsFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

// ListMyAppointments returns the authenticated patient's bookings.
func (h *Handler) ListMyAppointments(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	appointments, err := h.service.ListForPatient(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

// AvailableSlots returns the free half-hour slots for a physician on a
// date.
func (h *Handler) AvailableSlots(c *gin.Context) {
	physicianID, err := uuid.Parse(c.Query("physician_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid physician ID"))
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), physicianID, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"available_slots": slots})
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, &req, middleware.ClaimsFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	apt, err := h.service.Cancel(c.Request.Context(), id, middleware.ClaimsFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "appointment cancelled", apt)
}
