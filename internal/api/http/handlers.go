package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/foldergraph/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/foldergraph/internal/service"
	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// Version is reported by the root and health endpoints
const Version = "0.1.0"

// MaxArgsBytes bounds the body of a channel invocation
const MaxArgsBytes = 8 << 20

// Handlers contains all HTTP handlers
type Handlers struct {
	registry  *service.Registry
	metrics   *monitoring.Metrics
	worldsDir string
	trashDir  string
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, metrics *monitoring.Metrics, worldsDir, trashDir string) *Handlers {
	return &Handlers{
		registry:  registry,
		metrics:   metrics,
		worldsDir: worldsDir,
		trashDir:  trashDir,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "foldergraph",
		"version": Version,
	})
}

// Health reports storage locations and running totals
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"version":  Version,
		"channels": len(h.registry.List()),
		"storage": gin.H{
			"worlds": h.worldsDir,
			"trash":  h.trashDir,
		},
	}
	if h.metrics != nil {
		body["uptime_seconds"] = int64(h.metrics.Uptime().Seconds())
		body["stats"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// ListChannels lists every registered channel
func (h *Handlers) ListChannels(c *gin.Context) {
	channels := h.registry.List()
	c.JSON(http.StatusOK, gin.H{
		"channels": channels,
		"count":    len(channels),
	})
}

// Invoke runs the channel named in the path with the request body as its
// arguments. Operation failures still answer 200; only malformed requests
// and unknown channels change the status.
func (h *Handlers) Invoke(c *gin.Context) {
	name := c.Param("channel")

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxArgsBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, types.Failf(failure.InvalidArgument, "request body too large"))
			return
		}
		c.JSON(http.StatusBadRequest, types.Failf(failure.InvalidArgument, "failed to read request body"))
		return
	}
	if len(body) > 0 && !sonic.Valid(body) {
		c.JSON(http.StatusBadRequest, types.Failf(failure.InvalidArgument, "request body is not valid JSON"))
		return
	}

	result, err := h.registry.Invoke(c.Request.Context(), name, body)
	if errors.Is(err, service.ErrUnknownChannel) {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Metrics serves the Prometheus exposition
func (h *Handlers) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
