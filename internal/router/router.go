package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/internal/storage"
)

// SetupRouter configures the middleware chain and application routes.
func SetupRouter(cfg *config.Config, deps api.Deps, metricsHandler http.Handler) *gin.Engine {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(logger, deps.Metrics),
		middleware.ErrorHandler(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	if metricsHandler == nil {
		metricsHandler = observability.MetricsHandler()
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	// Locally stored images are served from the media root.
	if local, ok := deps.Images.(*storage.LocalStore); ok && isPathPrefix(cfg.MediaURL) {
		router.Static(cfg.MediaURL, local.Root())
	}

	api.RegisterRoutes(router, deps)
	return router
}

func isPathPrefix(mediaURL string) bool {
	return len(mediaURL) > 1 && mediaURL[0] == '/'
}
