package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/cache"
	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/observability"
)

var ErrProductNotFound = errors.New("product not found")

const (
	defaultCatalogTTL  = time.Minute
	catalogFillTimeout = 10 * time.Second
)

type recommender interface {
	Recommendations(ctx context.Context, caller backend.Caller, limit int) ([]models.Recommendation, error)
}

// MenuService serves the catalog read model from cache, refilling it from the
// source at most once at a time.
type MenuService struct {
	source      catalog.Source
	cache       cache.Provider
	ttl         time.Duration
	recommender recommender
	fills       singleflight.Group
	generation  atomic.Uint64
	logger      *slog.Logger
}

func NewMenuService(source catalog.Source, cacheProvider cache.Provider, ttl time.Duration, rec recommender, logger *slog.Logger) *MenuService {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{
		source:      source,
		cache:       cacheProvider,
		ttl:         ttl,
		recommender: rec,
		logger:      logger.With("component", "menu"),
	}
}

func (s *MenuService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Products returns every product the backend knows, whatever its status.
func (s *MenuService) Products(ctx context.Context) ([]catalog.Product, error) {
	if products, ok := s.cached(ctx); ok {
		return products, nil
	}

	result := s.fills.DoChan(cache.CatalogKey(), func() (any, error) {
		return s.fill(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]catalog.Product), nil
	}
}

// Visible returns the products customers may see, in catalog order.
func (s *MenuService) Visible(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]catalog.Product, 0, len(products))
	for i := range products {
		if products[i].Visible() {
			visible = append(visible, products[i])
		}
	}
	return visible, nil
}

func (s *MenuService) Product(ctx context.Context, id string) (*catalog.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

// Recommendations maps backend-ranked product IDs onto visible products,
// dropping any the catalog does not show.
func (s *MenuService) Recommendations(ctx context.Context, caller backend.Caller, limit int) ([]catalog.Product, error) {
	if s.recommender == nil {
		return nil, nil
	}
	recs, err := s.recommender.Recommendations(ctx, caller, limit)
	if err != nil {
		return nil, err
	}
	visible, err := s.Visible(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]catalog.Product, len(visible))
	for _, p := range visible {
		byID[p.ID] = p
	}
	out := make([]catalog.Product, 0, len(recs))
	for _, rec := range recs {
		if p, ok := byID[rec.ProductID]; ok {
			out = append(out, p)
			delete(byID, rec.ProductID)
		}
	}
	return out, nil
}

// Invalidate drops the cached catalog so the next read refetches it.
func (s *MenuService) Invalidate(ctx context.Context) error {
	s.generation.Add(1)
	s.fills.Forget(cache.CatalogKey())
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, cache.CatalogKey()); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	s.loggerFromContext(ctx).Debug("catalog cache invalidated")
	observability.MeterFromContext(ctx).Count("catalog.invalidated", 1)
	return nil
}

func (s *MenuService) cached(ctx context.Context) ([]catalog.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	products, err := cache.GetJSON[[]catalog.Product](ctx, s.cache, cache.CatalogKey())
	switch {
	case errors.Is(err, cache.ErrNotFound):
		return nil, false
	case errors.Is(err, cache.ErrCorrupt):
		s.loggerFromContext(ctx).Warn("discarded undecodable catalog cache entry", "error", err)
		return nil, false
	case err != nil:
		s.loggerFromContext(ctx).Warn("failed to read catalog cache", "error", err)
		return nil, false
	}
	return products, true
}

func (s *MenuService) fill(ctx context.Context) (products []catalog.Product, err error) {
	ctx, cancel := context.WithTimeout(ctx, catalogFillTimeout)
	defer cancel()

	ctx, op := observability.StartOperation(ctx, "service.menu", "FillCatalog", "catalog.fill")
	defer func() { op.Finish(err, attribute.Int("catalog.products", len(products))) }()

	generation := s.generation.Load()
	products, err = s.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	logger := s.loggerFromContext(ctx)
	for i := range products {
		for _, issue := range catalog.IntegrityIssues(&products[i]) {
			logger.Warn("catalog data integrity issue", "product_id", products[i].ID, "issue", issue)
		}
	}

	// An invalidation during the fetch means this data may already be stale.
	if s.cache == nil || s.generation.Load() != generation {
		return products, nil
	}
	if setErr := cache.SetJSON(ctx, s.cache, cache.CatalogKey(), products, s.ttl); setErr != nil {
		logger.Warn("failed to write catalog cache", "error", setErr)
		return products, nil
	}
	// An invalidation that landed between the check and the write has
	// already deleted the key, so take the stale entry back out.
	if s.generation.Load() != generation {
		if delErr := s.cache.Delete(ctx, cache.CatalogKey()); delErr != nil {
			logger.Warn("failed to drop stale catalog cache entry", "error", delErr)
		}
	}
	return products, nil
}
