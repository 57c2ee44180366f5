package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	qt "github.com/frankban/quicktest"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/helloapi/pkg/domain"
	"github.com/aescanero/helloapi/pkg/ports"
)

func newTestBus(t *testing.T) (*StreamsEventBus, *redis.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus, err := NewStreamsEventBus(client, Options{
		ConsumerGroup: "helloapi-test",
		ConsumerName:  "consumer-1",
		MaxLen:        100,
		Block:         50 * time.Millisecond,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	return bus, client
}

func TestNewStreamsEventBusRequiresOptions(t *testing.T) {
	c := qt.New(t)
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	_, err := NewStreamsEventBus(nil, Options{ConsumerGroup: "g", ConsumerName: "n"}, nil)
	c.Assert(err, qt.ErrorMatches, "redis client is required")
	_, err = NewStreamsEventBus(client, Options{ConsumerName: "n"}, nil)
	c.Assert(err, qt.ErrorMatches, "consumer group is required")
	_, err = NewStreamsEventBus(client, Options{ConsumerGroup: "g"}, nil)
	c.Assert(err, qt.ErrorMatches, "consumer name is required")
}

func TestPublishAppendsToStream(t *testing.T) {
	c := qt.New(t)
	bus, client := newTestBus(t)
	ctx := context.Background()

	id := int64(7)
	err := bus.Publish(ctx, ports.TopicValueOperations, ports.Event{
		ID:        "evt-1",
		Type:      ports.EventTypeValueOperation,
		Operation: domain.OperationGet,
		ValueID:   &id,
	})
	c.Assert(err, qt.IsNil)

	msgs, err := client.XRange(ctx, getStreamKey(ports.TopicValueOperations), "-", "+").Result()
	c.Assert(err, qt.IsNil)
	c.Assert(msgs, qt.HasLen, 1)

	var decoded map[string]interface{}
	c.Assert(json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &decoded), qt.IsNil)
	c.Assert(decoded["id"], qt.Equals, "evt-1")
	c.Assert(decoded["operation"], qt.Equals, "get")
	c.Assert(decoded["valueId"], qt.Equals, float64(7))
}

func TestSubscribeReceivesNewEvents(t *testing.T) {
	c := qt.New(t)
	bus, _ := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.Event, 1)
	err := bus.Subscribe(ctx, ports.TopicValueOperations, func(ctx context.Context, event ports.Event) error {
		received <- event
		return nil
	})
	c.Assert(err, qt.IsNil)

	c.Assert(bus.Publish(context.Background(), ports.TopicValueOperations, ports.Event{
		ID:        "evt-2",
		Operation: domain.OperationCreate,
	}), qt.IsNil)

	select {
	case event := <-received:
		c.Assert(event.ID, qt.Equals, "evt-2")
		c.Assert(event.Operation, qt.Equals, domain.OperationCreate)
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for event")
	}
}

func TestSubscribersEachReceiveEvents(t *testing.T) {
	c := qt.New(t)
	bus, client := newTestBus(t)
	streamKey := getStreamKey(ports.TopicValueOperations)

	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()

	first := make(chan ports.Event, 1)
	second := make(chan ports.Event, 1)
	c.Assert(bus.Subscribe(ctx1, ports.TopicValueOperations, func(ctx context.Context, event ports.Event) error {
		first <- event
		return nil
	}), qt.IsNil)
	c.Assert(bus.Subscribe(ctx2, ports.TopicValueOperations, func(ctx context.Context, event ports.Event) error {
		second <- event
		return nil
	}), qt.IsNil)

	groups, err := client.XInfoGroups(context.Background(), streamKey).Result()
	c.Assert(err, qt.IsNil)
	c.Assert(groups, qt.HasLen, 2)

	c.Assert(bus.Publish(context.Background(), ports.TopicValueOperations, ports.Event{
		ID:        "evt-3",
		Operation: domain.OperationUpdate,
	}), qt.IsNil)

	for _, ch := range []chan ports.Event{first, second} {
		select {
		case event := <-ch:
			c.Assert(event.ID, qt.Equals, "evt-3")
		case <-time.After(5 * time.Second):
			c.Fatal("timed out waiting for event")
		}
	}

	// Ending a subscription removes its consumer group
	cancel1()
	deadline := time.Now().Add(5 * time.Second)
	for {
		groups, err = client.XInfoGroups(context.Background(), streamKey).Result()
		c.Assert(err, qt.IsNil)
		if len(groups) == 1 {
			break
		}
		if time.Now().After(deadline) {
			c.Fatalf("expected 1 consumer group, got %d", len(groups))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestPublishTrimsStream(t *testing.T) {
	c := qt.New(t)
	bus, client := newTestBus(t)
	ctx := context.Background()

	for i := 0; i < 301; i++ {
		c.Assert(bus.Publish(ctx, ports.TopicValueOperations, ports.Event{
			ID:        "evt",
			Operation: domain.OperationList,
		}), qt.IsNil)
	}

	n, err := client.XLen(ctx, getStreamKey(ports.TopicValueOperations)).Result()
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(100))
}
