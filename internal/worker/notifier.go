// Package worker turns ledger events arriving from the broker into user
// notifications.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"studentspend/internal/amqp"
	"studentspend/internal/cache"
	"studentspend/internal/core"
	"studentspend/internal/log"
)

// Notification is what a Sink receives for each ledger event.
type Notification struct {
	EventID     string         `json:"eventId"`
	Type        core.EventType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OccurredAt  time.Time      `json:"occurredAt"`
}

// Sink delivers notifications somewhere a person will see them.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// WriterSink writes one JSON object per line.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

func (s *WriterSink) Deliver(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(n)
}

// Consumer is the broker side the worker reads from.
type Consumer interface {
	ConsumeLedgerEvents(ctx context.Context, handler amqp.Handler) error
}

var errEmptyEventID = errors.New("event without id")

// NotificationWorker handles ledger events. Redelivered events are
// recognised by id and delivered only once while they stay in the cache.
type NotificationWorker struct {
	sink   Sink
	seen   cache.Cache[struct{}]
	logger *log.Logger

	mu     sync.Mutex
	counts map[core.EventType]int
}

// NewNotificationWorker builds a worker. seen may be nil to disable
// de-duplication.
func NewNotificationWorker(sink Sink, seen cache.Cache[struct{}], logger *log.Logger) *NotificationWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &NotificationWorker{
		sink:   sink,
		seen:   seen,
		logger: logger.WithComponent(log.ComponentNotifier),
		counts: make(map[core.EventType]int),
	}
}

// HandleLedgerEvent processes a single message. Returning an error makes
// the broker requeue it.
func (w *NotificationWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	ev := msg.Event
	if ev.ID == "" {
		return fmt.Errorf("handle %s: %w", ev.Type, errEmptyEventID)
	}
	if w.seen != nil {
		if _, dup := w.seen.Get(ev.ID); dup {
			w.logger.DebugContext(ctx, "Duplicate event skipped", "event_id", ev.ID, log.FieldEventType, string(ev.Type))
			return nil
		}
	}

	n := Notification{
		EventID:     ev.ID,
		Type:        ev.Type,
		Title:       ev.Title,
		Description: ev.Description,
		OccurredAt:  ev.OccurredAt,
	}
	if err := w.sink.Deliver(ctx, n); err != nil {
		return fmt.Errorf("deliver %s: %w", ev.ID, err)
	}

	if w.seen != nil {
		w.seen.Set(ev.ID, struct{}{})
	}
	w.mu.Lock()
	w.counts[ev.Type]++
	w.mu.Unlock()

	fields := log.NewFields().
		WithOperation(log.OpConsume).
		With(log.FieldEventType, string(ev.Type)).
		With("title", ev.Title).
		With("lag_ms", msg.Timestamp.Sub(ev.OccurredAt).Milliseconds())
	if ev.ExpenseID != "" {
		fields = fields.With(log.FieldExpenseID, ev.ExpenseID)
	}
	w.logger.InfoContext(ctx, "Notification delivered", fields.ToSlice()...)
	return nil
}

// Counts returns how many notifications of each type were delivered.
func (w *NotificationWorker) Counts() map[core.EventType]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[core.EventType]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

// Run consumes until ctx is cancelled. Cancellation is not an error.
func (w *NotificationWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Notification worker started", log.FieldOperation, log.OpStartup)
	err := consumer.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	w.logger.InfoContext(ctx, "Notification worker stopped", log.FieldOperation, log.OpShutdown, "counts", w.Counts())
	return err
}
