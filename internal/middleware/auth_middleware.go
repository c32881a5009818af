package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appauth "github.com/yigit/alumnidesk/internal/app/auth"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextKeyAdminID   = "adminID"
	ContextKeySubject   = "subject"
	ContextKeyRole      = "role"
	ContextKeyAnonymous = "anonymous"
	ContextKeyClaims    = "claims"
)

// RevocationChecker reports whether a token id was signed out
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	revocations RevocationChecker
	authz       *appauth.AuthorizationService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, revocations RevocationChecker, authz *appauth.AuthorizationService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		revocations: revocations,
		authz:       authz,
	}
}

// JWTAuth middleware for JWT token validation. Staff and guest tokens both
// pass; RequireStaff narrows further.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return m.jwtAuth(false)
}

// WebSocketAuth is JWTAuth that also accepts the token as the token query
// parameter. Browsers cannot set headers on websocket upgrades.
func (m *AuthMiddleware) WebSocketAuth() gin.HandlerFunc {
	return m.jwtAuth(true)
}

func (m *AuthMiddleware) jwtAuth(allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && allowQueryToken {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				HandleAPIError(c, err)
				return
			}
			if revoked {
				HandleAPIError(c, apperrors.ErrTokenRevoked)
				return
			}
		}

		c.Set(ContextKeyAdminID, claims.AdminID)
		c.Set(ContextKeySubject, claims.Subject)
		c.Set(ContextKeyRole, string(claims.Role))
		c.Set(ContextKeyAnonymous, claims.Anonymous)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// RequireStaff rejects guest sessions and staff accounts that are no longer
// active. Must run after JWTAuth.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("User information not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		if err := m.authz.ValidateStaff(c.Request.Context(), claims); err != nil {
			if errors.Is(err, apperrors.ErrAdminNotFound) {
				err = apperrors.ErrTokenInvalid
			}
			HandleAPIError(c, err)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims JWTAuth stored on the context
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// AdminIDFrom returns the authenticated admin's id, "" for guests
func AdminIDFrom(c *gin.Context) string {
	return c.GetString(ContextKeyAdminID)
}
