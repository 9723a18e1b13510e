package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/storage"
)

// Deps carries everything the HTTP handlers need.
type Deps struct {
	DB            *gorm.DB
	Recipes       service.IRecipeService
	Auth          service.IAuthService
	Images        storage.ImageStore
	RateLimiter   *middleware.RateLimiter
	Metrics       *observability.Metrics
	Logger        *slog.Logger
	MaxImageBytes int64
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", NewHealthHandler(deps.DB).HealthCheck)

	// Writes are authenticated first so the limiter can key on the admin.
	protect := []gin.HandlerFunc{middleware.AuthMiddleware(deps.Auth)}
	var limit []gin.HandlerFunc
	if deps.RateLimiter != nil {
		limit = append(limit, deps.RateLimiter.RateLimitMiddleware())
		protect = append(protect, limit...)
	}

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth, deps.Logger).RegisterRoutes(v1, limit...)
	NewRecipeHandler(deps.Recipes, deps.Images, deps.Metrics, deps.Logger, deps.MaxImageBytes).RegisterRoutes(v1, protect...)
	NewAdminHandler(deps.Recipes).RegisterRoutes(v1, middleware.AuthMiddleware(deps.Auth))
}
