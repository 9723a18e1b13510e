package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// AuthHandler handles admin authentication requests
type AuthHandler struct {
	authService service.IAuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService service.IAuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, limit ...gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		handlers := append(append([]gin.HandlerFunc{}, limit...), h.Login)
		auth.POST("/login", handlers...)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed", "username", req.Username)
		_ = c.Error(err)
		return
	}

	observability.WithAdmin(h.logger, req.Username).Info("admin logged in")
	c.JSON(http.StatusOK, resp)
}
