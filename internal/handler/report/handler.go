package report

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicore/clinic-api/internal/middleware"
	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/service/report"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/httputil"
)

type Handler struct {
	service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateReport(c *gin.Context) {
	var req model.CreatePatientReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid report ID"))
		return
	}

	r, err := h.service.Get(c.Request.Context(), id, middleware.ClaimsFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, r)
}

// ListReports returns all reports, optionally filtered to one patient.
func (h *Handler) ListReports(c *gin.Context) {
	patientID := uuid.Nil
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid patient ID"))
			return
		}
		patientID = id
	}

	reports, err := h.service.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reports)
}

// ListMyReports returns the authenticated patient's reports.
func (h *Handler) ListMyReports(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	reports, err := h.service.ListForPatient(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reports)
}
