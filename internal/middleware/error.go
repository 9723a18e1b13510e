package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler turns the last error recorded with c.Error into a JSON
// response and recovers panics as 500s.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered", "panic", rec, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := errorResponse(err)
		if status == http.StatusInternalServerError {
			logger.Error("request failed", "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
		}
		c.JSON(status, body)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: ve.Fields}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not found"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}
}
