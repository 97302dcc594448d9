// Package realtime receives backend notifications over NATS and fans them out
// to in-process listeners.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Subjects published by the backend.
const (
	SubjectProductCreated = "sended-product"
	SubjectProductUpdated = "updated-product"
	SubjectOrderCreated   = "sended-order"
	SubjectOrderUpdated   = "updated-order"
	SubjectTableUpdated   = "updated-table"
)

// Subjects lists every subject the web tier listens on.
var Subjects = []string{
	SubjectProductCreated,
	SubjectProductUpdated,
	SubjectOrderCreated,
	SubjectOrderUpdated,
	SubjectTableUpdated,
}

// IsProductSubject reports whether subject signals a catalog change.
func IsProductSubject(subject string) bool {
	return subject == SubjectProductCreated || subject == SubjectProductUpdated
}

// Event is a received notification. Payloads are opaque.
type Event struct {
	Subject    string    `json:"subject"`
	Data       []byte    `json:"-"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Payload returns the data as JSON when it already is JSON, otherwise as a
// JSON string.
func (e Event) Payload() json.RawMessage {
	if len(e.Data) > 0 && json.Valid(e.Data) {
		return json.RawMessage(e.Data)
	}
	return json.RawMessage(strconv.Quote(string(e.Data)))
}

type Handler func(ctx context.Context, event Event) error

// Router dispatches events to the handlers registered for their subject.
type Router struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		handlers: make(map[string][]Handler),
		logger:   logger.With("component", "realtime"),
	}
}

func (r *Router) Handle(subject string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[subject] = append(r.handlers[subject], handler)
}

// HandleAll registers handler for every known subject.
func (r *Router) HandleAll(handler Handler) {
	for _, subject := range Subjects {
		r.Handle(subject, handler)
	}
}

// Dispatch runs every handler for the event's subject. A failing handler does
// not stop the others.
func (r *Router) Dispatch(ctx context.Context, event Event) error {
	r.mu.RLock()
	handlers := r.handlers[event.Subject]
	r.mu.RUnlock()

	if len(handlers) == 0 {
		r.logger.Debug("no handler for realtime event", "subject", event.Subject)
		return nil
	}

	var dispatchErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			dispatchErr = errors.Join(dispatchErr, fmt.Errorf("%s: %w", event.Subject, err))
		}
	}
	return dispatchErr
}
