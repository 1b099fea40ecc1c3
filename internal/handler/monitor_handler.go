package handler

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/store"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler streams the live session board to the back office over
// SSE: a full snapshot on connect, then every store write as it happens.
type MonitorHandler struct {
	sessions *store.SessionStore
	log      zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(sessions *store.SessionStore, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		sessions: sessions,
		log:      log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorSSE godoc
// GET /api/v1/admin/monitor
func (h *MonitorHandler) MonitorSSE(c *gin.Context) {
	ctx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Subscribe before snapshotting so no write falls in the gap.
	pubsub := h.sessions.Subscribe(ctx)
	defer pubsub.Close()
	ch := pubsub.Channel()

	sessions, err := h.sessions.List(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("monitor snapshot failed")
		return
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	c.SSEvent("message", gin.H{"type": "snapshot", "sessions": sessions})
	c.Writer.Flush()

	h.log.Info().Msg("admin attached to live monitor")
	h.forward(ctx, c, ch)
	h.log.Info().Msg("admin detached from live monitor")
}

// forward relays store events to the client until the request context
// ends or the subscription channel closes.
func (h *MonitorHandler) forward(ctx context.Context, c *gin.Context, ch <-chan *redis.Message) {
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	pingPayload, _ := json.Marshal(gin.H{"type": "ping"})

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Forward the raw event; the client re-fetches the record if
			// it needs more than id and status.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-keepAlive.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
