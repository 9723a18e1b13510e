package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/storage"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

func newTestServer(t *testing.T, port string) (*Server, string) {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	mediaRoot := t.TempDir()

	cfg := &config.Config{
		ServerHost:         "127.0.0.1",
		ServerPort:         port,
		JWTSecret:          "test-secret",
		MediaURL:           "/media/",
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}
	deps := api.Deps{
		DB:            db,
		Recipes:       service.NewRecipeService(db, metrics),
		Auth:          service.NewAuthService(db, cfg.JWTSecret),
		Images:        storage.NewLocalStore(mediaRoot, cfg.MediaURL),
		Metrics:       metrics,
		Logger:        observability.NewLoggerTo(io.Discard, "api", slog.LevelError),
		MaxImageBytes: 1 << 20,
	}
	return New(cfg, deps, observability.HandlerFor(registry)), mediaRoot
}

func TestNew(t *testing.T) {
	srv, mediaRoot := newTestServer(t, "8080")
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	require.NoError(t, os.MkdirAll(filepath.Join(mediaRoot, "recipes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "recipes", "a.txt"), []byte("hello"), 0o644))
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/recipes/a.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestStartAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	srv, _ := newTestServer(t, strconv.Itoa(port))
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + srv.Addr() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
