package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/pkg/auth"
	apperrors "github.com/medicore/clinic-api/pkg/errors"
	"github.com/medicore/clinic-api/pkg/httputil"
)

const contextClaims = "claims"

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate verifies the bearer token and stores the claims in the
// request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondWithError(c, apperrors.Unauthenticated("missing authorization header", nil))
			c.Abort()
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthenticated("invalid authorization format", nil))
			c.Abort()
			return
		}

		claims, err := m.jwtSvc.Verify(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthenticated("invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(contextClaims, claims)
		c.Next()
	}
}

// OptionalAuthenticate stores claims when a valid bearer token is
// presented but lets anonymous requests through. Used on routes whose
// behavior depends on who, if anyone, is calling.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := m.jwtSvc.Verify(parts[1]); err == nil {
				c.Set(contextClaims, claims)
			}
		}
		c.Next()
	}
}

// RequireRole restricts a route to the given roles. It must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			httputil.RespondWithError(c, apperrors.Unauthenticated("authentication required", nil))
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		httputil.RespondWithError(c, apperrors.Forbidden("insufficient privileges for this resource"))
		c.Abort()
	}
}

// ClaimsFromContext returns the verified claims set by Authenticate,
// or nil on unauthenticated requests.
func ClaimsFromContext(c *gin.Context) *model.TokenClaims {
	v, ok := c.Get(contextClaims)
	if !ok {
		return nil
	}
	claims, ok := v.(*model.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
