package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/foldergraph/internal/infrastructure/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.TrashDir = filepath.Join(cfg.Storage.DataDir, "Trash")
	cfg.Server.Port = "0"
	cfg.RateLimit.Enabled = false
	return cfg
}

func TestServerRoutes(t *testing.T) {
	srv, err := NewServer(testConfig(t), nil)
	require.NoError(t, err)
	h := srv.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	file := filepath.Join(t.TempDir(), "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/ipc/check-exists", strings.NewReader(`{"path":"`+filepath.ToSlash(file)+`"}`))
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, map[string]any{"exists": true}, res["data"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/channels", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "save-world")

	assert.Len(t, srv.Registry().List(), 21)
}

func TestServerCompressesResponses(t *testing.T) {
	srv, err := NewServer(testConfig(t), nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/channels", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "list-worlds")
}

func TestServerRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1

	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)

	first := httptest.NewRecorder()
	srv.Handler().ServeHTTP(first, httptest.NewRequest("GET", "/", nil))
	second := httptest.NewRecorder()
	srv.Handler().ServeHTTP(second, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRunAndShutdown(t *testing.T) {
	srv, err := NewServer(testConfig(t), nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}
