package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rs...)

	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) produced() []*kgo.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*kgo.Record(nil), f.records...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishFillsEventIDAndTimestamp(t *testing.T) {
	producer := &fakeProducer{}
	p := NewPublisher(producer, "cart.checkouts", 4, discardLogger())

	p.Publish(CheckoutEvent{UserID: "u1", Total: "100"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Run(ctx) // drains the buffered event on shutdown

	records := producer.produced()
	require.Len(t, records, 1)
	assert.Equal(t, "cart.checkouts", records[0].Topic)
	assert.Equal(t, []byte("u1"), records[0].Key)

	var event CheckoutEvent
	require.NoError(t, json.Unmarshal(records[0].Value, &event))
	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.OccurredAt.IsZero())
	assert.Equal(t, "100", event.Total)
}

func TestPublishKeepsCallerSuppliedIdentity(t *testing.T) {
	producer := &fakeProducer{}
	p := NewPublisher(producer, "cart.checkouts", 4, discardLogger())
	occurred := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	p.Publish(CheckoutEvent{EventID: "evt-1", UserID: "u1", OccurredAt: occurred})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Run(ctx)

	records := producer.produced()
	require.Len(t, records, 1)

	var event CheckoutEvent
	require.NoError(t, json.Unmarshal(records[0].Value, &event))
	assert.Equal(t, "evt-1", event.EventID)
	assert.True(t, occurred.Equal(event.OccurredAt))
}

func TestPublishDropsOldestWhenBufferIsFull(t *testing.T) {
	producer := &fakeProducer{}
	p := NewPublisher(producer, "cart.checkouts", 2, discardLogger())

	p.Publish(CheckoutEvent{EventID: "evt-1", UserID: "u1"})
	p.Publish(CheckoutEvent{EventID: "evt-2", UserID: "u1"})
	p.Publish(CheckoutEvent{EventID: "evt-3", UserID: "u1"}) // evicts evt-1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Run(ctx)

	records := producer.produced()
	require.Len(t, records, 2)

	var ids []string
	for _, r := range records {
		var event CheckoutEvent
		require.NoError(t, json.Unmarshal(r.Value, &event))
		ids = append(ids, event.EventID)
	}
	assert.Equal(t, []string{"evt-2", "evt-3"}, ids)
}

func TestRunDeliversWhileActive(t *testing.T) {
	producer := &fakeProducer{}
	p := NewPublisher(producer, "cart.checkouts", 4, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	p.Publish(CheckoutEvent{EventID: "evt-1", UserID: "u1"})

	assert.Eventually(t, func() bool {
		return len(producer.produced()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestProduceErrorDoesNotStopTheLoop(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	p := NewPublisher(producer, "cart.checkouts", 4, discardLogger())

	p.Publish(CheckoutEvent{EventID: "evt-1", UserID: "u1"})
	p.Publish(CheckoutEvent{EventID: "evt-2", UserID: "u1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Run(ctx)

	// Both events were attempted despite the failures.
	assert.Len(t, producer.produced(), 2)
}

func TestNewPublisherDefaultsBufferSize(t *testing.T) {
	p := NewPublisher(&fakeProducer{}, "cart.checkouts", 0, discardLogger())
	assert.Equal(t, 64, cap(p.inbox))
}
