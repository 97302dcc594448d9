package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryDraftStore_UpdateMergesLines(t *testing.T) {
	t.Parallel()

	store := NewMemoryDraftStore()
	ctx := context.Background()
	id := uuid.New()

	if _, err := store.Get(ctx, id, "emp-1"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}

	add := func(line DraftLine) func(*DraftOrder) error {
		return func(d *DraftOrder) error {
			d.AddLine(line)
			return nil
		}
	}

	if _, err := store.Update(ctx, id, "emp-1", add(DraftLine{VariantID: "v1", Quantity: 1})); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	draft, err := store.Update(ctx, id, "emp-1", add(DraftLine{VariantID: "v1", Quantity: 2}))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(draft.Lines) != 1 || draft.Lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line of 3, got %+v", draft.Lines)
	}

	draft.Lines[0].Quantity = 99
	stored, err := store.Get(ctx, id, "emp-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Lines[0].Quantity != 3 {
		t.Fatalf("expected stored draft isolated from caller mutation, got %d", stored.Lines[0].Quantity)
	}

	if _, err := store.Get(ctx, id, "emp-2"); !errors.Is(err, ErrDraftForbidden) {
		t.Fatalf("expected ErrDraftForbidden, got %v", err)
	}
	if _, err := store.Update(ctx, id, "emp-2", add(DraftLine{VariantID: "v2", Quantity: 1})); !errors.Is(err, ErrDraftForbidden) {
		t.Fatalf("expected ErrDraftForbidden on update, got %v", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, id, "emp-1"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected draft to be deleted, got %v", err)
	}
}

func TestMemoryDraftStore_FailedUpdateLeavesDraft(t *testing.T) {
	t.Parallel()

	store := NewMemoryDraftStore()
	ctx := context.Background()
	id := uuid.New()

	boom := errors.New("boom")
	if _, err := store.Update(ctx, id, "emp-1", func(d *DraftOrder) error {
		d.AddLine(DraftLine{VariantID: "v1", Quantity: 1})
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := store.Get(ctx, id, "emp-1"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected no draft after failed update, got %v", err)
	}
}

func TestMigrateURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"postgres://u:p@localhost:5432/tableside":   "pgx5://u:p@localhost:5432/tableside",
		"postgresql://u:p@localhost:5432/tableside": "pgx5://u:p@localhost:5432/tableside",
		"pgx5://already": "pgx5://already",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
		op    string
	}{
		{name: "empty", query: "  ", want: "sql.query", op: "SQL.QUERY"},
		{name: "collapses whitespace", query: "\n\tSELECT id\n\t FROM draft_orders ", want: "SELECT id FROM draft_orders", op: "SELECT"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeQuery(tt.query)
			if got != tt.want {
				t.Fatalf("normalizeQuery() = %q, want %q", got, tt.want)
			}
			if op := queryOperation(got); op != tt.op {
				t.Fatalf("queryOperation() = %q, want %q", op, tt.op)
			}
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected up and down migration, got %d files", len(entries))
	}
}

func TestQueryTable(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"SELECT id FROM draft_orders WHERE id = $1":  "draft_orders",
		"INSERT INTO draft_orders (id) VALUES ($1)":  "draft_orders",
		"UPDATE draft_orders SET lines = $1":         "draft_orders",
		"DELETE FROM \"draft_orders\" WHERE id = $1": "draft_orders",
		"SELECT 1": "",
	}
	for query, want := range tests {
		if got := queryTable(query); got != want {
			t.Fatalf("queryTable(%q) = %q, want %q", query, got, want)
		}
	}
}
