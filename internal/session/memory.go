package session

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryLimit bounds the in-memory store. Every cookieless request
// starts a guest session, so without a cap crawlers grow it forever.
const DefaultMemoryLimit = 10_000

const sweepInterval = time.Minute

// MemoryStore keeps sessions in process. When full, the session closest to
// expiry is evicted to make room.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	limit     int
	lastSweep time.Time
	now       func() time.Time
}

type memoryEntry struct {
	data      *Data
	expiresAt time.Time
}

// NewMemoryStore returns a store capped at DefaultMemoryLimit sessions.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithLimit(DefaultMemoryLimit)
}

// NewMemoryStoreWithLimit returns a store holding at most limit sessions.
func NewMemoryStoreWithLimit(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		limit:    limit,
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	entry, ok := s.sessions[key]
	if !ok {
		return nil, false
	}
	if now.After(entry.expiresAt) {
		delete(s.sessions, key)
		return nil, false
	}
	return cloneData(entry.data), true
}

func (s *MemoryStore) Set(_ context.Context, key string, data *Data, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if _, exists := s.sessions[key]; !exists && len(s.sessions) >= s.limit {
		s.evictLocked(now)
	}
	s.sessions[key] = memoryEntry{
		data:      cloneData(data),
		expiresAt: now.Add(ttl),
	}
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
}

// Len reports how many sessions are held, expired ones included until the
// next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, key)
		}
	}
}

// evictLocked drops expired sessions, or the one expiring soonest when none
// have expired.
func (s *MemoryStore) evictLocked(now time.Time) {
	for key, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, key)
		}
	}
	if len(s.sessions) < s.limit {
		return
	}

	var (
		victim   string
		earliest time.Time
	)
	for key, entry := range s.sessions {
		if victim == "" || entry.expiresAt.Before(earliest) {
			victim, earliest = key, entry.expiresAt
		}
	}
	delete(s.sessions, victim)
}
