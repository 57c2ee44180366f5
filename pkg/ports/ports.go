// Package ports defines the interfaces shared between the application layer
// and its adapters.
package ports

import (
	"context"
	"time"

	"github.com/aescanero/helloapi/pkg/domain"
)

// EventType identifies the kind of an event
type EventType string

const (
	// EventTypeValueOperation is emitted once per handled values operation
	EventTypeValueOperation EventType = "value.operation"
)

// TopicValueOperations is the topic values operation events are published on
const TopicValueOperations = "values.operations"

// Event is an audit record of a handled operation.
// It never carries the text of a Value.
type Event struct {
	ID           string           `json:"id"`
	Type         EventType        `json:"type"`
	Operation    domain.Operation `json:"operation"`
	ValueID      *int64           `json:"valueId,omitempty"`
	PayloadBytes *int             `json:"payloadBytes,omitempty"`
	RequestID    string           `json:"requestId,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// EventHandler processes a single event
type EventHandler func(ctx context.Context, event Event) error

// EventBus publishes events and delivers them to subscribers
type EventBus interface {
	// Publish publishes an event on a topic
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe registers a handler for a topic. The subscription ends when ctx is done.
	Subscribe(ctx context.Context, topic string, handler EventHandler) error

	// Close releases resources held by the bus
	Close() error
}

// MetricsCollector records application metrics
type MetricsCollector interface {
	RecordValueOperation(operation string)
	RecordEventPublished(topic string, err error)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	SetFeedClients(count int)
	SetDependencyUp(dependency string, up bool)
}
