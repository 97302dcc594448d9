package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DraftStore persists POS draft orders in Postgres.
type DraftStore struct {
	pool *pgxpool.Pool
}

func NewDraftStore(pool *pgxpool.Pool) *DraftStore {
	return &DraftStore{pool: pool}
}

func (s *DraftStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *DraftStore) Get(ctx context.Context, id uuid.UUID, employeeID string) (*DraftOrder, error) {
	draft, err := scanDraft(s.pool.QueryRow(ctx, `
		SELECT id, employee_id, lines, created_at, updated_at
		FROM draft_orders
		WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if draft.EmployeeID != employeeID {
		return nil, ErrDraftForbidden
	}
	return draft, nil
}

// Update creates the draft when missing, then loads it under a row lock,
// applies fn and writes it back in the same transaction. The insert comes
// first so that concurrent first writes to one id queue on the same row
// instead of both seeing no row to lock.
func (s *DraftStore) Update(ctx context.Context, id uuid.UUID, employeeID string, fn func(*DraftOrder) error) (*DraftOrder, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) //nolint
	}()

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		INSERT INTO draft_orders (id, employee_id, lines, created_at, updated_at)
		VALUES ($1, $2, '[]'::jsonb, $3, $3)
		ON CONFLICT (id) DO NOTHING`,
		id, employeeID, now,
	); err != nil {
		return nil, fmt.Errorf("failed to create draft order: %w", err)
	}

	draft, err := scanDraft(tx.QueryRow(ctx, `
		SELECT id, employee_id, lines, created_at, updated_at
		FROM draft_orders
		WHERE id = $1
		FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if draft.EmployeeID != employeeID {
		return nil, ErrDraftForbidden
	}

	if err := fn(draft); err != nil {
		return nil, err
	}
	draft.UpdatedAt = time.Now().UTC()

	linesJSON, err := json.Marshal(draft.Lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft lines: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE draft_orders
		SET lines = $2, updated_at = $3
		WHERE id = $1`,
		draft.ID, linesJSON, draft.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to save draft order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit draft order: %w", err)
	}
	return draft, nil
}

func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM draft_orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete draft order: %w", err)
	}
	return nil
}

func scanDraft(row pgx.Row) (*DraftOrder, error) {
	var (
		draft     DraftOrder
		linesJSON []byte
	)
	err := row.Scan(&draft.ID, &draft.EmployeeID, &linesJSON, &draft.CreatedAt, &draft.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft order: %w", err)
	}
	if len(linesJSON) > 0 {
		if err := json.Unmarshal(linesJSON, &draft.Lines); err != nil {
			return nil, fmt.Errorf("failed to decode draft lines: %w", err)
		}
	}
	return &draft, nil
}
