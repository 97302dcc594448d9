package realtime

import (
	"context"
	"sync"
)

const listenerBuffer = 16

// Broadcaster fans events out to live listeners such as POS screens. Slow
// listeners miss events rather than block delivery.
type Broadcaster struct {
	mu        sync.Mutex
	listeners map[chan Event]struct{}
	dropped   int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release it; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, listenerBuffer)

	b.mu.Lock()
	b.listeners[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.listeners {
		select {
		case ch <- event:
		default:
			b.dropped++
		}
	}
}

// Handler adapts Publish for a Router.
func (b *Broadcaster) Handler() Handler {
	return func(_ context.Context, event Event) error {
		b.Publish(event)
		return nil
	}
}

func (b *Broadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Dropped returns the number of deliveries skipped for full listeners.
func (b *Broadcaster) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
