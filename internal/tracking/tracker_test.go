package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type blockingSender struct {
	mu      sync.Mutex
	events  []Event
	release chan struct{}
	started chan struct{}
	err     error
}

func newBlockingSender() *blockingSender {
	return &blockingSender{release: make(chan struct{}), started: make(chan struct{}, 10)}
}

func (s *blockingSender) TrackBehavior(ctx context.Context, _ string, event Event) error {
	s.started <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return s.err
}

func (s *blockingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestTracker_SuppressesWhileInFlight(t *testing.T) {
	t.Parallel()

	sender := newBlockingSender()
	tracker := NewTracker(sender, nil, time.Second)

	if !tracker.Track(context.Background(), "guest-1", Event{Kind: KindCart, Quantity: 2}) {
		t.Fatalf("expected first event to dispatch")
	}
	<-sender.started

	if tracker.Track(context.Background(), "guest-1", Event{Kind: KindCart, Quantity: 1}) {
		t.Fatalf("expected second cart event to be suppressed while first is in flight")
	}
	if !tracker.Track(context.Background(), "guest-2", Event{Kind: KindCart, Quantity: 1}) {
		t.Fatalf("expected other subject to dispatch")
	}
	<-sender.started

	close(sender.release)
	tracker.Wait()

	if got := sender.count(); got != 2 {
		t.Fatalf("expected 2 delivered events, got %d", got)
	}

	if !tracker.Track(context.Background(), "guest-1", Event{Kind: KindCart, Quantity: 3}) {
		t.Fatalf("expected dispatch after previous event completed")
	}
	tracker.Wait()
}

func TestTracker_DetachedFromRequestCancellation(t *testing.T) {
	t.Parallel()

	sender := newBlockingSender()
	close(sender.release)
	tracker := NewTracker(sender, nil, time.Second)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tracker.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if !tracker.Track(ctx, "customer-9", Event{Kind: KindCart, ProductID: "iced-tea", Quantity: 1}) {
		t.Fatalf("expected dispatch")
	}
	tracker.Wait()

	if sender.count() != 1 {
		t.Fatalf("expected event delivered despite canceled request context")
	}
	if got := sender.events[0].Timestamp; !got.Equal(fixed) {
		t.Fatalf("expected timestamp %v, got %v", fixed, got)
	}
}

func TestTracker_FailureReleasesSlot(t *testing.T) {
	t.Parallel()

	sender := newBlockingSender()
	sender.err = errors.New("backend down")
	close(sender.release)
	tracker := NewTracker(sender, nil, time.Second)

	tracker.Track(context.Background(), "guest-1", Event{Kind: KindCart})
	tracker.Wait()

	if !tracker.Track(context.Background(), "guest-1", Event{Kind: KindCart}) {
		t.Fatalf("expected failed event to release its in-flight slot")
	}
	tracker.Wait()
}

func TestTracker_IgnoresIncompleteEvents(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(newBlockingSender(), nil, time.Second)
	if tracker.Track(context.Background(), "", Event{Kind: KindCart}) {
		t.Fatalf("expected no dispatch without subject")
	}
	if tracker.Track(context.Background(), "guest-1", Event{}) {
		t.Fatalf("expected no dispatch without kind")
	}

	var nilTracker *Tracker
	if nilTracker.Track(context.Background(), "guest-1", Event{Kind: KindCart}) {
		t.Fatalf("expected nil tracker to be inert")
	}
}
