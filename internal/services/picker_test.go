package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/db"
	"github.com/tablesideapp/tableside/internal/ordering"
	"github.com/tablesideapp/tableside/internal/tracking"
)

func newPickerService(t *testing.T, products ...catalog.Product) (*PickerService, *MenuService, *fakeSource) {
	t.Helper()
	source := &fakeSource{products: products}
	menu := newMenu(t, source, nil)
	return NewPickerService(menu, nil), menu, source
}

func TestPickerService_CartCommitTracksBehavior(t *testing.T) {
	t.Parallel()

	pickers, _, _ := newPickerService(t, icedTea())
	ctx := context.Background()
	be := &fakeBackend{}
	tracker := &recordingTracker{}
	composer := NewCartComposer(be, tracker, backend.Caller{GuestID: "guest-1"}, "guest-1")

	sel, err := pickers.Restore(ctx, ordering.Snapshot{})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if err := pickers.Open(ctx, sel, "iced-tea"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := sel.Toggle("Size", "L"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := sel.Toggle("Ice", "Less"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	sel.SetQuantity(2)

	line, err := pickers.Commit(ctx, SurfaceMenu, sel, composer)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if line.Variant.ID != "v-l-less" || line.Quantity != 2 {
		t.Fatalf("unexpected line %+v", line)
	}
	if sel.State() != ordering.StateEmpty {
		t.Fatalf("expected selector closed after commit, got %s", sel.State())
	}
	if len(be.added) != 1 || be.lastCaller.GuestID != "guest-1" {
		t.Fatalf("expected one cart add for guest, got %+v %+v", be.added, be.lastCaller)
	}
	if len(tracker.events) != 1 || tracker.events[0].Kind != tracking.KindCart || tracker.events[0].Quantity != 2 {
		t.Fatalf("expected cart behavior event, got %+v", tracker.events)
	}
}

func TestPickerService_CartFailureKeepsSelectionAndSkipsTracking(t *testing.T) {
	t.Parallel()

	pickers, _, _ := newPickerService(t, icedTea())
	ctx := context.Background()
	be := &fakeBackend{addErr: &backend.APIError{StatusCode: 409, Message: "out of stock"}}
	tracker := &recordingTracker{}

	sel, _ := pickers.Restore(ctx, ordering.Snapshot{})
	_ = pickers.Open(ctx, sel, "iced-tea")
	_ = sel.Toggle("Size", "M")
	_ = sel.Toggle("Ice", "Normal")

	_, err := pickers.Commit(ctx, SurfaceMenu, sel, NewCartComposer(be, tracker, backend.Caller{}, "g"))
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if sel.State() != ordering.StateResolved || sel.Quantity() != 1 {
		t.Fatalf("expected state preserved for retry, got %s q=%d", sel.State(), sel.Quantity())
	}
	if len(tracker.events) != 0 {
		t.Fatalf("expected no tracking on failure")
	}
}

func TestPickerService_TapOnPOS(t *testing.T) {
	t.Parallel()

	pickers, _, _ := newPickerService(t, icedTea(), comboA(), seasonal())
	ctx := context.Background()
	drafts := db.NewMemoryDraftStore()
	draftID := uuid.New()
	composer := NewDraftComposer(drafts, draftID, "emp-1")

	sel, _ := pickers.Restore(ctx, ordering.Snapshot{})

	added, err := pickers.Tap(ctx, SurfacePOS, sel, "combo-a", composer)
	if err != nil || !added {
		t.Fatalf("expected quick add, got %v %v", added, err)
	}
	added, _ = pickers.Tap(ctx, SurfacePOS, sel, "combo-a", composer)
	if !added {
		t.Fatalf("expected second quick add")
	}
	if sel.State() != ordering.StateEmpty {
		t.Fatalf("quick add must not touch the selector, got %s", sel.State())
	}

	draft, err := drafts.Get(ctx, draftID, "emp-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(draft.Lines) != 1 || draft.Lines[0].Quantity != 2 || draft.Lines[0].UnitPrice != 5500 {
		t.Fatalf("expected merged combo line, got %+v", draft.Lines)
	}

	added, err = pickers.Tap(ctx, SurfacePOS, sel, "iced-tea", composer)
	if err != nil || added {
		t.Fatalf("expected picker to open for variant product, got %v %v", added, err)
	}
	if sel.State() != ordering.StateSelecting || sel.Product().ID != "iced-tea" {
		t.Fatalf("expected iced tea open, got %s", sel.State())
	}

	if _, err := pickers.Tap(ctx, SurfacePOS, sel, "seasonal", composer); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
}

func TestPickerService_RestoreAcrossCatalogRefresh(t *testing.T) {
	t.Parallel()

	pickers, menu, source := newPickerService(t, icedTea())
	ctx := context.Background()

	sel, _ := pickers.Restore(ctx, ordering.Snapshot{})
	_ = pickers.Open(ctx, sel, "iced-tea")
	_ = sel.Toggle("Size", "L")
	_ = sel.Toggle("Ice", "Less")
	sel.SetQuantity(2)
	snap := sel.Snapshot()

	refreshed := icedTea()
	refreshed.VariantAxes[1].Options = []string{"Normal"}
	refreshed.Variants = refreshed.Variants[:1]
	source.mu.Lock()
	source.products = []catalog.Product{refreshed}
	source.mu.Unlock()
	if err := menu.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	restored, err := pickers.Restore(ctx, snap)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := restored.Selection(); got["Size"] != "L" || got["Ice"] != "" {
		t.Fatalf("expected undeclared option dropped, got %+v", got)
	}
	if restored.State() != ordering.StateSelecting || restored.Quantity() != 0 {
		t.Fatalf("expected unresolved selector with quantity 0, got %s q=%d", restored.State(), restored.Quantity())
	}

	source.mu.Lock()
	source.products = nil
	source.mu.Unlock()
	_ = menu.Invalidate(ctx)
	gone, err := pickers.Restore(ctx, snap)
	if err != nil || gone.State() != ordering.StateEmpty {
		t.Fatalf("expected empty selector for vanished product, got %v %v", gone.State(), err)
	}
}
