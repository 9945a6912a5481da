// Package events publishes checkout events to a Kafka-compatible broker so
// downstream order processing can pick them up. Publishing is strictly
// best-effort: a slow or absent broker never blocks a checkout.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"domcart/internal/domain"
)

// CheckoutEvent is the record body for one completed checkout.
type CheckoutEvent struct {
	EventID    string            `json:"eventId"`
	UserID     string            `json:"userId"`
	Items      []domain.CartItem `json:"items"`
	Total      string            `json:"total"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// Producer is the slice of *kgo.Client the publisher needs, so tests can
// fake the broker.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher buffers events on a channel drained by Run. When the buffer is
// full the oldest event is dropped; checkouts outrank event delivery.
type Publisher struct {
	producer Producer
	topic    string
	inbox    chan CheckoutEvent
	logger   *slog.Logger
}

func NewPublisher(producer Producer, topic string, buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		inbox:    make(chan CheckoutEvent, buffer),
		logger:   logger,
	}
}

// Publish enqueues without blocking the caller.
func (p *Publisher) Publish(event CheckoutEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	for {
		select {
		case p.inbox <- event:
			return
		default:
		}
		select {
		case dropped := <-p.inbox:
			p.logger.Warn("checkout event dropped, buffer full",
				"event_id", dropped.EventID,
				"user_id", dropped.UserID,
			)
		default:
		}
	}
}

// Run drains the inbox until ctx is cancelled, then flushes whatever is
// still buffered with a short grace period.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return ctx.Err()
		case event := <-p.inbox:
			p.produce(ctx, event)
		}
	}
}

func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-p.inbox:
			p.produce(ctx, event)
		default:
			return
		}
	}
}

func (p *Publisher) produce(ctx context.Context, event CheckoutEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("checkout event encode failed", "event_id", event.EventID, "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.UserID),
		Value: raw,
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.Error("checkout event publish failed",
			"event_id", event.EventID,
			"topic", p.topic,
			"error", err,
		)
	}
}
