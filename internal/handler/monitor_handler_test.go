package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newMonitorFixture(t *testing.T) (*MonitorHandler, *gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/api/v1/admin/monitor", nil)
	return NewMonitorHandler(nil, zerolog.Nop()), c, rec
}

func TestMonitorForwardRelaysEvents(t *testing.T) {
	h, c, rec := newMonitorFixture(t)

	ch := make(chan *redis.Message, 2)
	ch <- &redis.Message{Payload: `{"session_id":"abc","status":"in_progress"}`}
	close(ch)

	h.forward(context.Background(), c, ch)

	body := rec.Body.String()
	if !strings.Contains(body, `data: {"session_id":"abc","status":"in_progress"}`) {
		t.Fatalf("event not forwarded, body: %q", body)
	}
}

func TestMonitorForwardStopsOnClosedChannel(t *testing.T) {
	h, c, _ := newMonitorFixture(t)

	ch := make(chan *redis.Message)
	close(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.forward(context.Background(), c, ch)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forward kept running after the subscription channel closed")
	}
}

func TestMonitorForwardStopsOnContextDone(t *testing.T) {
	h, c, _ := newMonitorFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.forward(ctx, c, make(chan *redis.Message))
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forward kept running after context cancellation")
	}
}
