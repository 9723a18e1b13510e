package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// Context keys set by AuthMiddleware.
const (
	ContextAdminID  = "admin_id"
	ContextUsername = "username"
)

// TokenValidator checks a bearer token against the active admin accounts.
type TokenValidator interface {
	Authenticate(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates admin JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := validator.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextAdminID, claims.AdminID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}
