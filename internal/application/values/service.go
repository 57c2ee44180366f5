package values

import (
	"context"
	"time"

	"github.com/aescanero/helloapi/pkg/domain"
	"github.com/aescanero/helloapi/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Canned responses
const (
	ListValue1 = "value1"
	ListValue2 = "value2"
	ItemValue  = "value"
)

// Service answers the values operations.
// It holds no Value state: every call is independent of every other call.
type Service struct {
	eventBus ports.EventBus
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewService creates a new values service.
// eventBus and metrics may be nil.
func NewService(eventBus ports.EventBus, metrics ports.MetricsCollector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns all values
func (s *Service) List(ctx context.Context) []string {
	s.record(ctx, domain.OperationList, nil, nil)
	return []string{ListValue1, ListValue2}
}

// Get returns the value with the given id
func (s *Service) Get(ctx context.Context, id int64) string {
	s.record(ctx, domain.OperationGet, &id, nil)
	return ItemValue
}

// Create saves a new value
func (s *Service) Create(ctx context.Context, value string) {
	size := len(value)
	s.record(ctx, domain.OperationCreate, nil, &size)
}

// Update updates the value with the given id
func (s *Service) Update(ctx context.Context, id int64, value string) {
	size := len(value)
	s.record(ctx, domain.OperationUpdate, &id, &size)
}

// Delete deletes the value with the given id
func (s *Service) Delete(ctx context.Context, id int64) {
	s.record(ctx, domain.OperationDelete, &id, nil)
}

// record publishes the audit event for an operation.
// Failures are logged and never surface to the caller.
func (s *Service) record(ctx context.Context, op domain.Operation, id *int64, payloadBytes *int) {
	if s.metrics != nil {
		s.metrics.RecordValueOperation(op.String())
	}

	if s.eventBus == nil {
		return
	}

	event := ports.Event{
		ID:           uuid.New().String(),
		Type:         ports.EventTypeValueOperation,
		Operation:    op,
		ValueID:      id,
		PayloadBytes: payloadBytes,
		RequestID:    RequestIDFromContext(ctx),
		Timestamp:    time.Now().UTC(),
	}

	err := s.eventBus.Publish(ctx, ports.TopicValueOperations, event)
	if s.metrics != nil {
		s.metrics.RecordEventPublished(ports.TopicValueOperations, err)
	}
	if err != nil {
		s.logger.Warn("failed to publish value operation event",
			zap.String("operation", op.String()),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return
	}

	s.logger.Debug("value operation",
		zap.String("operation", op.String()),
		zap.String("event_id", event.ID))
}
