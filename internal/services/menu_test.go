package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/cache"
	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/models"
)

func newMenu(t *testing.T, source *fakeSource, rec recommender) *MenuService {
	t.Helper()
	provider, err := cache.NewMemoryProvider(10)
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	return NewMenuService(source, provider, time.Minute, rec, nil)
}

func TestMenuService_CachesAndInvalidates(t *testing.T) {
	t.Parallel()

	source := &fakeSource{products: []catalog.Product{icedTea(), comboA()}}
	menu := newMenu(t, source, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		products, err := menu.Products(ctx)
		if err != nil {
			t.Fatalf("Products() error = %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
	}
	if source.callCount() != 1 {
		t.Fatalf("expected a single source fetch, got %d", source.callCount())
	}

	if err := menu.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := menu.Products(ctx); err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if source.callCount() != 2 {
		t.Fatalf("expected refetch after invalidation, got %d fetches", source.callCount())
	}
}

func TestMenuService_ConcurrentFillsShareOneFetch(t *testing.T) {
	t.Parallel()

	source := &fakeSource{products: []catalog.Product{icedTea()}, delay: 50 * time.Millisecond}
	menu := newMenu(t, source, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := menu.Products(context.Background()); err != nil {
				t.Errorf("Products() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if source.callCount() != 1 {
		t.Fatalf("expected concurrent readers to share one fetch, got %d", source.callCount())
	}
}

func TestMenuService_SourceErrorIsNotCached(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("backend down")}
	menu := newMenu(t, source, nil)

	if _, err := menu.Products(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	source.mu.Lock()
	source.err = nil
	source.products = []catalog.Product{icedTea()}
	source.mu.Unlock()

	products, err := menu.Products(context.Background())
	if err != nil || len(products) != 1 {
		t.Fatalf("Products() = %v, %v", products, err)
	}
}

// racingProvider runs beforeSet once ahead of the first write, standing in
// for an invalidation that lands between the generation check and the write.
type racingProvider struct {
	cache.Provider
	once      sync.Once
	beforeSet func()
}

func (p *racingProvider) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	p.once.Do(p.beforeSet)
	return p.Provider.Set(ctx, key, value, ttl)
}

func TestMenuService_InvalidationDuringWriteDropsStaleEntry(t *testing.T) {
	t.Parallel()

	memory, err := cache.NewMemoryProvider(10)
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	provider := &racingProvider{Provider: memory}
	source := &fakeSource{products: []catalog.Product{icedTea()}}
	menu := NewMenuService(source, provider, time.Minute, nil, nil)
	ctx := context.Background()
	provider.beforeSet = func() {
		if err := menu.Invalidate(ctx); err != nil {
			t.Errorf("Invalidate() error = %v", err)
		}
	}

	if _, err := menu.Products(ctx); err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if _, err := memory.Get(ctx, cache.CatalogKey()); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected stale catalog to be dropped, got err = %v", err)
	}

	if _, err := menu.Products(ctx); err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if source.callCount() != 2 {
		t.Fatalf("expected the read after invalidation to refetch, got %d fetches", source.callCount())
	}
}

func TestMenuService_VisibleAndProduct(t *testing.T) {
	t.Parallel()

	source := &fakeSource{products: []catalog.Product{icedTea(), seasonal(), retired()}}
	menu := newMenu(t, source, nil)
	ctx := context.Background()

	visible, err := menu.Visible(ctx)
	if err != nil {
		t.Fatalf("Visible() error = %v", err)
	}
	if len(visible) != 2 || visible[0].ID != "iced-tea" || visible[1].ID != "seasonal" {
		t.Fatalf("expected iced-tea and seasonal, got %+v", visible)
	}

	product, err := menu.Product(ctx, "iced-tea")
	if err != nil || product.Name != "Iced Tea" {
		t.Fatalf("Product() = %+v, %v", product, err)
	}
	if _, err := menu.Product(ctx, "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestMenuService_Recommendations(t *testing.T) {
	t.Parallel()

	source := &fakeSource{products: []catalog.Product{icedTea(), comboA(), retired()}}
	rec := &fakeBackend{recs: []models.Recommendation{
		{ProductID: "combo-a", Score: 0.9},
		{ProductID: "retired", Score: 0.8},
		{ProductID: "unknown", Score: 0.7},
		{ProductID: "iced-tea", Score: 0.5},
		{ProductID: "combo-a", Score: 0.1},
	}}
	menu := newMenu(t, source, rec)

	products, err := menu.Recommendations(context.Background(), backend.Caller{GuestID: "g"}, 5)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(products) != 2 || products[0].ID != "combo-a" || products[1].ID != "iced-tea" {
		t.Fatalf("unexpected recommendations %+v", products)
	}
}
