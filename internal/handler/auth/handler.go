package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/medicore/clinic-api/internal/middleware"
	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/service/auth"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// Register creates an account. Anyone may self-register as admin or
// physician; patient accounts can only be created by authenticated
// staff, so patients always arrive with their clinical profile filled.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if req.Role == model.RolePatient {
		claims := middleware.ClaimsFromContext(c)
		if claims == nil || (claims.Role != model.RoleAdmin && claims.Role != model.RolePhysician) {
			httputil.RespondWithError(c, apperrors.Forbidden("patient accounts are created by staff"))
			return
		}
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, user.Sanitized())
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

// Verify reports the identity behind the presented token. The auth
// middleware has already rejected invalid tokens by the time this runs.
func (h *Handler) Verify(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	httputil.RespondWithSuccess(c, gin.H{
		"valid":      true,
		"user_id":    claims.UserID,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt,
	})
}

// Me returns the current account.
func (h *Handler) Me(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	user, err := h.service.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "password has been reset", nil)
}
