package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDraftStore keeps drafts in process; drafts are lost on restart.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*DraftOrder
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[uuid.UUID]*DraftOrder)}
}

func (s *MemoryDraftStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryDraftStore) Get(_ context.Context, id uuid.UUID, employeeID string) (*DraftOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if draft.EmployeeID != employeeID {
		return nil, ErrDraftForbidden
	}
	return cloneDraft(draft), nil
}

func (s *MemoryDraftStore) Update(_ context.Context, id uuid.UUID, employeeID string, fn func(*DraftOrder) error) (*DraftOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var draft *DraftOrder
	if existing, ok := s.drafts[id]; ok {
		if existing.EmployeeID != employeeID {
			return nil, ErrDraftForbidden
		}
		draft = cloneDraft(existing)
	} else {
		draft = &DraftOrder{ID: id, EmployeeID: employeeID, CreatedAt: time.Now().UTC()}
	}

	if err := fn(draft); err != nil {
		return nil, err
	}
	draft.UpdatedAt = time.Now().UTC()
	s.drafts[id] = cloneDraft(draft)
	return draft, nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func cloneDraft(draft *DraftOrder) *DraftOrder {
	cloned := *draft
	cloned.Lines = slices.Clone(draft.Lines)
	return &cloned
}
