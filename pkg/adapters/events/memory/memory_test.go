package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/helloapi/pkg/domain"
	"github.com/aescanero/helloapi/pkg/ports"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	c := qt.New(t)
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	ctx := context.Background()

	var got []ports.Event
	handler := func(ctx context.Context, event ports.Event) error {
		got = append(got, event)
		return nil
	}
	c.Assert(bus.Subscribe(ctx, "a", handler), qt.IsNil)

	c.Assert(bus.Publish(ctx, "a", ports.Event{ID: "1", Operation: domain.OperationList}), qt.IsNil)
	c.Assert(bus.Publish(ctx, "b", ports.Event{ID: "2"}), qt.IsNil)
	c.Assert(bus.Publish(ctx, "a", ports.Event{ID: "3", Operation: domain.OperationDelete}), qt.IsNil)

	c.Assert(got, qt.HasLen, 2)
	c.Assert(got[0].ID, qt.Equals, "1")
	c.Assert(got[1].ID, qt.Equals, "3")
}

func TestHandlerErrorDoesNotFailPublish(t *testing.T) {
	c := qt.New(t)
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	ctx := context.Background()

	calls := 0
	c.Assert(bus.Subscribe(ctx, "a", func(context.Context, ports.Event) error {
		calls++
		return errors.New("boom")
	}), qt.IsNil)
	c.Assert(bus.Subscribe(ctx, "a", func(context.Context, ports.Event) error {
		calls++
		return nil
	}), qt.IsNil)

	c.Assert(bus.Publish(ctx, "a", ports.Event{ID: "1"}), qt.IsNil)
	c.Assert(calls, qt.Equals, 2)
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	c := qt.New(t)
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	c.Assert(bus.Subscribe(ctx, "a", func(context.Context, ports.Event) error { return nil }), qt.IsNil)
	c.Assert(bus.Subscribe(context.Background(), "a", func(context.Context, ports.Event) error { return nil }), qt.IsNil)
	c.Assert(bus.SubscriberCount("a"), qt.Equals, 2)

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for bus.SubscriberCount("a") != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Assert(bus.SubscriberCount("a"), qt.Equals, 1)
}

func TestClosedBusRejects(t *testing.T) {
	c := qt.New(t)
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	c.Assert(bus.Close(), qt.IsNil)
	c.Assert(bus.Publish(ctx, "a", ports.Event{}), qt.ErrorIs, ErrClosed)
	c.Assert(bus.Subscribe(ctx, "a", func(context.Context, ports.Event) error { return nil }), qt.ErrorIs, ErrClosed)
}
