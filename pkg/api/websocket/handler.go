package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aescanero/helloapi/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Handler streams values operation events to WebSocket clients
type Handler struct {
	eventBus ports.EventBus
	metrics  ports.MetricsCollector
	logger   *zap.Logger
	buffer   int
	upgrader websocket.Upgrader
	clients  atomic.Int64
}

// Config holds WebSocket handler configuration
type Config struct {
	EventBus ports.EventBus
	Metrics  ports.MetricsCollector
	Logger   *zap.Logger
	// Buffer is the number of events queued per client before events are dropped
	Buffer int
	// CheckOrigin decides whether an upgrade request is accepted. Nil allows all origins.
	CheckOrigin func(r *http.Request) bool
}

// NewHandler creates a new WebSocket handler
func NewHandler(cfg *Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	buffer := cfg.Buffer
	if buffer < 1 {
		buffer = 32
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	return &Handler{
		eventBus: cfg.EventBus,
		metrics:  cfg.Metrics,
		logger:   logger,
		buffer:   buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Clients returns the number of connected clients
func (h *Handler) Clients() int {
	return int(h.clients.Load())
}

// HandleFeed upgrades the connection and streams events until the client goes away.
// An optional "operation" query parameter restricts the feed to one operation.
func (h *Handler) HandleFeed(c *gin.Context) {
	filter := c.Query("operation")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.setClients(h.clients.Add(1))
	defer func() { h.setClients(h.clients.Add(-1)) }()

	h.logger.Info("WebSocket connection established",
		zap.String("client", c.ClientIP()),
		zap.String("operation", filter))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	eventChan := make(chan ports.Event, h.buffer)
	if err := h.eventBus.Subscribe(ctx, ports.TopicValueOperations, h.enqueue(eventChan)); err != nil {
		h.logger.Error("failed to subscribe to events", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(writeWait))
		return
	}

	// The read loop only serves control frames; it ends the feed when the client disconnects.
	go h.readLoop(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event := <-eventChan:
			if filter != "" && event.Operation.String() != filter {
				continue
			}

			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event", zap.Error(err))
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Error("failed to write message", zap.Error(err))
				return
			}
		}
	}
}

// enqueue returns an event handler that never blocks the bus
func (h *Handler) enqueue(ch chan<- ports.Event) ports.EventHandler {
	return func(ctx context.Context, event ports.Event) error {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			h.logger.Warn("event channel full, dropping event",
				zap.String("event_id", event.ID),
				zap.String("operation", event.Operation.String()))
		}
		return nil
	}
}

func (h *Handler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) setClients(n int64) {
	if h.metrics != nil {
		h.metrics.SetFeedClients(int(n))
	}
}
