// Package redpanda publishes session lifecycle events to a Redpanda/Kafka
// topic. Events are advisory fan-out for downstream consumers (ATS sync,
// analytics); the chat flow never blocks on them.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// TopicEvents is the Kafka topic for session lifecycle events.
const TopicEvents = "recruit-chat-events"

// envelope is the wire shape of one event.
type envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// keyer lets payloads choose their partitioning key.
type keyer interface{ SessionKey() string }

// recordFor builds the Kafka record for an event. Events for the same session
// share a key so their relative order survives partitioning.
func recordFor(event string, payload any) (*kgo.Record, error) {
	b, err := json.Marshal(envelope{Event: event, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("op=events.encode: %w", err)
	}
	var key []byte
	if k, ok := payload.(keyer); ok && k.SessionKey() != "" {
		key = []byte(k.SessionKey())
	}
	return &kgo.Record{
		Topic: TopicEvents,
		Key:   key,
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte(event)},
		},
	}, nil
}

// Publisher wraps a Kafka producer and implements domain.EventPublisher.
// A nil Publisher is valid and drops events, so deployments without a broker
// run unchanged.
type Publisher struct {
	client *kgo.Client
}

// NewPublisher connects to the brokers and ensures the events topic exists.
func NewPublisher(brokers []string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=events.new: no seed brokers provided")
	}

	kotelTracer := kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))
	kotelService := kotel.NewKotel(kotel.WithTracer(kotelTracer))

	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1_000_000),
		kgo.WithHooks(kotelService.Hooks()...),
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("op=events.new: client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := createTopicIfNotExists(ctx, client, TopicEvents, 1, 1); err != nil {
		slog.Warn("events topic create failed, assuming it exists",
			slog.String("topic", TopicEvents),
			slog.Any("error", err))
	}

	slog.Info("event publisher ready", slog.Any("brokers", brokers), slog.String("topic", TopicEvents))
	return &Publisher{client: client}, nil
}

// Publish emits one event. Delivery errors are returned but callers treat
// them as non-fatal.
func (p *Publisher) Publish(ctx domain.Context, event string, payload any) error {
	if p == nil || p.client == nil {
		return nil
	}
	rec, err := recordFor(event, payload)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("op=events.publish: event=%s: %w", event, err)
	}
	return nil
}

// Ping probes broker connectivity for readiness checks.
func (p *Publisher) Ping(ctx domain.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Ping(ctx)
}

// Close flushes and closes the underlying client.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	p.client.Close()
	return nil
}
