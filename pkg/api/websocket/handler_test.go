package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/helloapi/pkg/adapters/events/memory"
	"github.com/aescanero/helloapi/pkg/domain"
	"github.com/aescanero/helloapi/pkg/ports"
)

func newFeedServer(t *testing.T) (*Handler, *memory.InMemoryEventBus, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := memory.NewInMemoryEventBus(zaptest.NewLogger(t))
	h := NewHandler(&Config{EventBus: bus, Logger: zaptest.NewLogger(t), Buffer: 4})

	router := gin.New()
	router.GET("/api/events/ws", h.HandleFeed)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return h, bus, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/ws"
}

func dial(c *qt.C, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForSubscribers(c *qt.C, bus *memory.InMemoryEventBus, n int) {
	deadline := time.Now().Add(2 * time.Second)
	for bus.SubscriberCount(ports.TopicValueOperations) != n {
		if time.Now().After(deadline) {
			c.Fatalf("expected %d subscribers, got %d", n, bus.SubscriberCount(ports.TopicValueOperations))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeedStreamsEvents(t *testing.T) {
	c := qt.New(t)
	h, bus, url := newFeedServer(t)

	conn := dial(c, url)
	waitForSubscribers(c, bus, 1)
	c.Assert(h.Clients(), qt.Equals, 1)

	id := int64(12)
	c.Assert(bus.Publish(context.Background(), ports.TopicValueOperations, ports.Event{
		ID:        "evt-1",
		Type:      ports.EventTypeValueOperation,
		Operation: domain.OperationDelete,
		ValueID:   &id,
	}), qt.IsNil)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	c.Assert(err, qt.IsNil)

	var got map[string]interface{}
	c.Assert(json.Unmarshal(data, &got), qt.IsNil)
	c.Assert(got["id"], qt.Equals, "evt-1")
	c.Assert(got["operation"], qt.Equals, "delete")
	c.Assert(got["valueId"], qt.Equals, float64(12))
}

func TestFeedFiltersByOperation(t *testing.T) {
	c := qt.New(t)
	_, bus, url := newFeedServer(t)

	conn := dial(c, url+"?operation=create")
	waitForSubscribers(c, bus, 1)

	ctx := context.Background()
	c.Assert(bus.Publish(ctx, ports.TopicValueOperations, ports.Event{ID: "a", Operation: domain.OperationList}), qt.IsNil)
	c.Assert(bus.Publish(ctx, ports.TopicValueOperations, ports.Event{ID: "b", Operation: domain.OperationCreate}), qt.IsNil)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	c.Assert(err, qt.IsNil)

	var got ports.Event
	c.Assert(json.Unmarshal(data, &got), qt.IsNil)
	c.Assert(got.ID, qt.Equals, "b")
	c.Assert(got.Operation, qt.Equals, domain.OperationCreate)
}

func TestFeedUnsubscribesOnDisconnect(t *testing.T) {
	c := qt.New(t)
	h, bus, url := newFeedServer(t)

	conn := dial(c, url)
	waitForSubscribers(c, bus, 1)

	c.Assert(conn.Close(), qt.IsNil)
	waitForSubscribers(c, bus, 0)

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Assert(h.Clients(), qt.Equals, 0)
}

func TestEnqueueDropsWhenClientIsSlow(t *testing.T) {
	c := qt.New(t)
	h := NewHandler(&Config{Logger: zaptest.NewLogger(t)})

	ch := make(chan ports.Event, 1)
	handler := h.enqueue(ch)

	c.Assert(handler(context.Background(), ports.Event{ID: "first"}), qt.IsNil)

	done := make(chan error, 1)
	go func() { done <- handler(context.Background(), ports.Event{ID: "second"}) }()

	select {
	case err := <-done:
		c.Assert(err, qt.IsNil)
	case <-time.After(time.Second):
		c.Fatal("enqueue blocked on a full channel")
	}

	c.Assert(ch, qt.HasLen, 1)
	c.Assert((<-ch).ID, qt.Equals, "first")
}
