package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a JSON logger with a component field attached.
func NewLogger(component string) *slog.Logger {
	return NewLoggerTo(os.Stdout, component, levelFromEnv())
}

// NewLoggerTo is NewLogger with an explicit destination and level.
func NewLoggerTo(w io.Writer, component string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	if component != "" {
		logger = logger.With("component", component)
	}
	return logger
}

func WithRecipe(logger *slog.Logger, recipeID uint) *slog.Logger {
	if logger == nil || recipeID == 0 {
		return logger
	}
	return logger.With("recipe_id", recipeID)
}

func WithAdmin(logger *slog.Logger, username string) *slog.Logger {
	if logger == nil || username == "" {
		return logger
	}
	return logger.With("admin", username)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
