package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/tablesideapp/tableside/internal/logging"
)

const defaultWorkers = 2

// Connect opens a NATS connection that keeps reconnecting in the background.
// An unreachable server at startup is retried rather than reported.
func Connect(url string, timeout time.Duration, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("tableside"),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info("nats reconnected", "url", conn.ConnectedUrlRedacted())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Subscriber listens on every backend subject and hands messages to a Router
// from a small pool of workers.
type Subscriber struct {
	conn    *nats.Conn
	router  *Router
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

func NewSubscriber(conn *nats.Conn, router *Router, workers int, logger *slog.Logger) *Subscriber {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		conn:    conn,
		router:  router,
		workers: workers,
		logger:  logger.With("component", "realtime"),
		now:     time.Now,
	}
}

// Connected reports whether the underlying connection is currently up.
func (s *Subscriber) Connected() bool {
	return s != nil && s.conn != nil && s.conn.IsConnected()
}

// Run subscribes and processes messages until ctx is canceled.
func (s *Subscriber) Run(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("nats connection is required")
	}

	msgs := make(chan *nats.Msg, 64)
	subs := make([]*nats.Subscription, 0, len(Subjects))
	for _, subject := range Subjects {
		sub, err := s.conn.ChanSubscribe(subject, msgs)
		if err != nil {
			unsubscribeAll(subs)
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		subs = append(subs, sub)
	}
	defer unsubscribeAll(subs)

	s.logger.Info("realtime subscriber started", "subjects", Subjects, "workers", s.workers)

	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gCtx.Done():
					return nil
				case msg := <-msgs:
					s.handleMessage(gCtx, msg)
				}
			}
		})
	}
	return g.Wait()
}

func (s *Subscriber) handleMessage(ctx context.Context, msg *nats.Msg) {
	if msg == nil {
		return
	}
	event := Event{
		Subject:    msg.Subject,
		Data:       msg.Data,
		ReceivedAt: s.now(),
	}

	ctx = logging.With(ctx, s.logger, "realtime_subject", msg.Subject)
	meter := sentry.NewMeter(ctx).WithCtx(ctx)
	if err := s.router.Dispatch(ctx, event); err != nil {
		s.logger.Error("failed to handle realtime event", "subject", msg.Subject, "error", err)
		meter.Count("realtime.events.failed", 1, sentry.WithAttributes(attribute.String("realtime.subject", msg.Subject)))
		return
	}
	meter.Count("realtime.events", 1, sentry.WithAttributes(attribute.String("realtime.subject", msg.Subject)))
}

func unsubscribeAll(subs []*nats.Subscription) {
	for _, sub := range subs {
		_ = sub.Unsubscribe() //nolint
	}
}
