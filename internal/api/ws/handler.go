package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/foldergraph/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/foldergraph/internal/service"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

const (
	maxMessageBytes = 8 << 20
	writeWait       = 10 * time.Second
)

// Message types
const (
	TypeInvoke = "invoke"
	TypeResult = "result"
	TypePing   = "ping"
	TypePong   = "pong"
	TypeSystem = "system"
	TypeError  = "error"
)

// Request is one client frame. An empty type means invoke.
type Request struct {
	Type    string          `json:"type,omitempty"`
	ID      string          `json:"id,omitempty"`
	Channel string          `json:"channel,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// Response is one server frame
type Response struct {
	Type    string        `json:"type"`
	ID      string        `json:"id,omitempty"`
	Channel string        `json:"channel,omitempty"`
	Result  *types.Result `json:"result,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Handler manages WebSocket connections
type Handler struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler. Browsers may connect from the
// listed origins; "*" or an empty list allows any.
func NewHandler(registry *service.Registry, metrics *monitoring.Metrics, logger *zap.Logger, origins []string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(origins),
		},
	}
}

func checkOrigin(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}

// HandleConnection upgrades the request and serves frames until the client
// goes away. Frames are handled in order.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	ctx := c.Request.Context()
	h.logger.Debug("WebSocket connected", zap.String("remote", c.ClientIP()))

	h.send(conn, Response{Type: TypeSystem, Message: "Connected to foldergraph"})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		h.record("in")

		if err := h.sendFrame(conn, h.handle(ctx, data)); err != nil {
			h.logger.Warn("WebSocket write error", zap.Error(err))
			return
		}
	}
}

func (h *Handler) handle(ctx context.Context, data []byte) Response {
	var req Request
	if err := sonic.Unmarshal(data, &req); err != nil {
		return Response{Type: TypeError, Message: "invalid message"}
	}

	switch req.Type {
	case TypePing:
		return Response{Type: TypePong, ID: req.ID}
	case "", TypeInvoke:
		result, _ := h.registry.Invoke(ctx, req.Channel, req.Args)
		return Response{Type: TypeResult, ID: req.ID, Channel: req.Channel, Result: &result}
	default:
		return Response{Type: TypeError, ID: req.ID, Message: "unknown message type: " + req.Type}
	}
}

func (h *Handler) send(conn *websocket.Conn, resp Response) {
	if err := h.sendFrame(conn, resp); err != nil {
		h.logger.Debug("WebSocket write error", zap.Error(err))
	}
}

func (h *Handler) sendFrame(conn *websocket.Conn, resp Response) error {
	data, err := sonic.Marshal(resp)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	h.record("out")
	return nil
}

func (h *Handler) record(direction string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction)
	}
}
