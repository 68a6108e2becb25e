// Package publisher forwards audit events to Kafka.
//
// Compliance events use synchronous produces so callers get fail-closed
// semantics; security and operations events are produced asynchronously.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "hireline/pkg/platform/audit"
)

// Config holds the Kafka connection and topic layout.
type Config struct {
	Brokers         []string
	ComplianceTopic string
	OpsTopic        string
}

// Kafka publishes audit events to the configured topics.
type Kafka struct {
	client *kgo.Client
	cfg    Config
	logger *slog.Logger
}

// wireEvent is the JSON structure written to Kafka.
type wireEvent struct {
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	CandidateID string `json:"candidate_id,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Action      string `json:"action"`
	Detail      string `json:"detail,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	ActorID     string `json:"actor_id,omitempty"`
	ClientIP    string `json:"client_ip,omitempty"`
	Device      string `json:"device,omitempty"`
}

// New connects to Kafka and ensures the audit topics exist.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopics(ctx, client, cfg.ComplianceTopic, cfg.OpsTopic); err != nil {
		client.Close()
		return nil, err
	}

	return &Kafka{client: client, cfg: cfg, logger: logger}, nil
}

func ensureTopics(ctx context.Context, client *kgo.Client, topics ...string) error {
	admin := kadm.NewClient(client)
	responses, err := admin.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create audit topics: %w", err)
	}
	for _, resp := range responses {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

func (k *Kafka) record(event audit.Event) (*kgo.Record, error) {
	wire := wireEvent{
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Detail:    event.Detail,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
		ClientIP:  event.ClientIP,
		Device:    event.Device,
	}
	if !event.CandidateID.IsNil() {
		wire.CandidateID = event.CandidateID.String()
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}

	topic := k.cfg.OpsTopic
	if event.Category == audit.CategoryCompliance {
		topic = k.cfg.ComplianceTopic
	}

	// Key by candidate so one candidate's trail stays ordered per partition.
	var key []byte
	if wire.CandidateID != "" {
		key = []byte(wire.CandidateID)
	}

	return &kgo.Record{Topic: topic, Key: key, Value: payload}, nil
}

// Publish synchronously produces the event and blocks until acknowledged.
func (k *Kafka) Publish(ctx context.Context, event audit.Event) error {
	record, err := k.record(event)
	if err != nil {
		return err
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// PublishAsync produces the event without waiting for acknowledgement.
// Delivery failures are logged, never surfaced to the caller.
func (k *Kafka) PublishAsync(ctx context.Context, event audit.Event) {
	record, err := k.record(event)
	if err != nil {
		k.logger.WarnContext(ctx, "audit event marshal failed", "action", event.Action, "error", err)
		return
	}
	k.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			k.logger.Warn("audit event delivery failed",
				"topic", r.Topic,
				"action", event.Action,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (k *Kafka) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := k.client.Flush(ctx); err != nil {
		k.client.Close()
		return fmt.Errorf("flush audit events: %w", err)
	}
	k.client.Close()
	return nil
}
