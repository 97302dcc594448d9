// Package tracking sends behavior events (cart adds, product views) to the
// backend without ever blocking or failing the user-facing action.
package tracking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/observability"
)

const (
	KindCart = "cart"
	KindView = "view"

	defaultTimeout = 5 * time.Second
)

// Event is a single behavior signal.
type Event struct {
	Kind      string    `json:"kind"`
	ProductID string    `json:"productId,omitempty"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// Sender delivers events upstream.
type Sender interface {
	TrackBehavior(ctx context.Context, subject string, event Event) error
}

type inflightKey struct {
	subject string
	kind    string
}

// Tracker dispatches events on detached goroutines. While an event of a kind
// is in flight for a subject, further events of that kind are dropped.
type Tracker struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	inflight map[inflightKey]struct{}
	wg       sync.WaitGroup
}

func NewTracker(sender Sender, logger *slog.Logger, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		sender:   sender,
		logger:   logger.With("component", "tracking"),
		timeout:  timeout,
		now:      time.Now,
		inflight: make(map[inflightKey]struct{}),
	}
}

// Track schedules event for subject and reports whether it was dispatched.
// The request context only contributes values; its cancellation does not
// abort delivery.
func (t *Tracker) Track(ctx context.Context, subject string, event Event) bool {
	if t == nil || t.sender == nil || subject == "" || event.Kind == "" {
		return false
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now()
	}

	key := inflightKey{subject: subject, kind: event.Kind}
	t.mu.Lock()
	if _, busy := t.inflight[key]; busy {
		t.mu.Unlock()
		observability.MeterFromContext(ctx).Count("tracking.suppressed", 1,
			sentry.WithAttributes(attribute.String("tracking.kind", event.Kind)))
		return false
	}
	t.inflight[key] = struct{}{}
	t.mu.Unlock()

	logger := logging.FromContext(ctx, t.logger)
	detached := context.WithoutCancel(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.release(key)

		sendCtx, cancel := context.WithTimeout(detached, t.timeout)
		defer cancel()

		if err := t.sender.TrackBehavior(sendCtx, subject, event); err != nil {
			logger.Warn("failed to track behavior", "kind", event.Kind, "product_id", event.ProductID, "error", err)
			observability.MeterFromContext(detached).Count("tracking.failed", 1,
				sentry.WithAttributes(attribute.String("tracking.kind", event.Kind)))
			return
		}
		observability.MeterFromContext(detached).Count("tracking.sent", 1,
			sentry.WithAttributes(attribute.String("tracking.kind", event.Kind)))
	}()

	return true
}

// Wait blocks until every dispatched event has finished.
func (t *Tracker) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}

func (t *Tracker) release(key inflightKey) {
	t.mu.Lock()
	delete(t.inflight, key)
	t.mu.Unlock()
}
