package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Publisher forwards audit events to an external sink such as Kafka.
// Publish blocks until the sink acknowledges; PublishAsync is fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event)
	Close() error
}

// Service is the Emitter used by domain services. Every event is appended to
// the store; events are additionally forwarded to the publisher when one is
// configured. Compliance events are fail-closed: a store or publish failure
// aborts the calling operation. Security and operations events degrade to a
// warning log instead.
type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithPublisher attaches an external sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit records one audit event.
func (s *Service) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	failClosed := event.Category == CategoryCompliance

	if err := s.store.Append(ctx, event); err != nil {
		if failClosed {
			s.logger.ErrorContext(ctx, "compliance audit persistence failed",
				"action", event.Action,
				"error", err,
			)
			return fmt.Errorf("audit persistence failed: %w", err)
		}
		s.logger.WarnContext(ctx, "audit persistence failed",
			"action", event.Action,
			"error", err,
		)
	}

	if s.publisher == nil {
		return nil
	}
	if failClosed {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "compliance audit publish failed",
				"action", event.Action,
				"error", err,
			)
			return fmt.Errorf("audit publish failed: %w", err)
		}
		return nil
	}
	s.publisher.PublishAsync(ctx, event)
	return nil
}
