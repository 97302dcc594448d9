package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestRouter_Dispatch(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil)
	var products, all atomic.Int32
	router.Handle(SubjectProductUpdated, func(context.Context, Event) error {
		products.Add(1)
		return nil
	})
	router.HandleAll(func(context.Context, Event) error {
		all.Add(1)
		return nil
	})
	router.Handle(SubjectTableUpdated, func(context.Context, Event) error {
		return errors.New("boom")
	})

	if err := router.Dispatch(context.Background(), Event{Subject: SubjectProductUpdated}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if err := router.Dispatch(context.Background(), Event{Subject: SubjectTableUpdated}); err == nil {
		t.Fatalf("expected handler error to surface")
	}
	if err := router.Dispatch(context.Background(), Event{Subject: "unknown"}); err != nil {
		t.Fatalf("expected unknown subject to be ignored, got %v", err)
	}

	if products.Load() != 1 {
		t.Fatalf("expected 1 product dispatch, got %d", products.Load())
	}
	if all.Load() != 2 {
		t.Fatalf("expected catch-all to run for both known subjects, got %d", all.Load())
	}
}

func TestEvent_Payload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "json object", data: []byte(`{"id":"p1"}`), want: `{"id":"p1"}`},
		{name: "plain text", data: []byte("p1"), want: `"p1"`},
		{name: "empty", data: nil, want: `""`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := string(Event{Data: tt.data}.Payload()); got != tt.want {
				t.Fatalf("Payload() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBroadcaster(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	first, cancelFirst := b.Subscribe()
	second, cancelSecond := b.Subscribe()
	if b.Listeners() != 2 {
		t.Fatalf("expected 2 listeners, got %d", b.Listeners())
	}

	if err := b.Handler()(context.Background(), Event{Subject: SubjectOrderCreated}); err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	for _, ch := range []<-chan Event{first, second} {
		select {
		case ev := <-ch:
			if ev.Subject != SubjectOrderCreated {
				t.Fatalf("unexpected subject %q", ev.Subject)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected event to be delivered")
		}
	}

	cancelFirst()
	cancelFirst()
	if _, open := <-first; open {
		t.Fatalf("expected canceled listener channel to be closed")
	}

	for i := 0; i < listenerBuffer+3; i++ {
		b.Publish(Event{Subject: SubjectTableUpdated})
	}
	if b.Dropped() != 3 {
		t.Fatalf("expected 3 dropped deliveries, got %d", b.Dropped())
	}
	cancelSecond()
	if b.Listeners() != 0 {
		t.Fatalf("expected no listeners, got %d", b.Listeners())
	}
}

func TestSubscriber_HandleMessage(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil)
	got := make(chan Event, 1)
	router.Handle(SubjectProductCreated, func(_ context.Context, ev Event) error {
		got <- ev
		return nil
	})

	sub := NewSubscriber(nil, router, 0, nil)
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	sub.now = func() time.Time { return fixed }

	sub.handleMessage(context.Background(), &nats.Msg{Subject: SubjectProductCreated, Data: []byte(`{"id":"p9"}`)})
	sub.handleMessage(context.Background(), nil)

	select {
	case ev := <-got:
		if string(ev.Data) != `{"id":"p9"}` || !ev.ReceivedAt.Equal(fixed) {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatalf("expected event to be dispatched")
	}

	if sub.Connected() {
		t.Fatalf("expected subscriber without connection to report disconnected")
	}
	if err := sub.Run(context.Background()); err == nil {
		t.Fatalf("expected Run without connection to fail")
	}
}

func TestIsProductSubject(t *testing.T) {
	t.Parallel()

	if !IsProductSubject(SubjectProductCreated) || !IsProductSubject(SubjectProductUpdated) {
		t.Fatalf("expected product subjects")
	}
	if IsProductSubject(SubjectOrderUpdated) {
		t.Fatalf("order subject is not a product subject")
	}
}
