package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/observability"
	"github.com/tablesideapp/tableside/internal/ordering"
)

var ErrProductUnavailable = errors.New("product is not available")

// Surfaces that own a picker.
const (
	SurfaceMenu = "menu"
	SurfacePOS  = "pos"
)

type productLookup interface {
	Product(ctx context.Context, id string) (*catalog.Product, error)
}

// PickerService rebuilds a surface's selector from its stored snapshot against
// current catalog data and runs picker operations on it.
type PickerService struct {
	products productLookup
	logger   *slog.Logger
}

func NewPickerService(products productLookup, logger *slog.Logger) *PickerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PickerService{products: products, logger: logger.With("component", "picker")}
}

func (s *PickerService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Restore returns the selector for snap. A product that disappeared or became
// unorderable yields an empty selector.
func (s *PickerService) Restore(ctx context.Context, snap ordering.Snapshot) (*ordering.Selector, error) {
	logger := s.loggerFromContext(ctx)
	if snap.IsZero() {
		return ordering.NewSelector(logger), nil
	}

	product, err := s.products.Product(ctx, snap.ProductID)
	if errors.Is(err, ErrProductNotFound) {
		logger.Info("picker product no longer in catalog", "product_id", snap.ProductID)
		return ordering.NewSelector(logger), nil
	}
	if err != nil {
		return nil, err
	}
	if !product.Orderable() {
		return ordering.NewSelector(logger), nil
	}
	return ordering.Restore(logger, product, snap), nil
}

// Open opens productID on sel.
func (s *PickerService) Open(ctx context.Context, sel *ordering.Selector, productID string) error {
	product, err := s.orderable(ctx, productID)
	if err != nil {
		return err
	}
	sel.Open(product)
	return nil
}

// Commit hands the resolved line to composer.
func (s *PickerService) Commit(ctx context.Context, surface string, sel *ordering.Selector, composer ordering.Composer) (line ordering.Line, err error) {
	ctx, op := observability.StartOperation(ctx, "service.picker", "Commit", "picker.commit",
		attribute.String("picker.surface", surface))
	defer func() { op.Finish(err) }()

	line, err = ordering.NewPicker(sel, composer).Commit(ctx)
	if err != nil {
		return ordering.Line{}, err
	}
	s.loggerFromContext(ctx).Info("picker line committed",
		"surface", surface,
		"product_id", line.Product.ID,
		"variant_id", line.Variant.ID,
		"quantity", line.Quantity,
	)
	return line, nil
}

// Tap quick-adds a single-variant product, or opens the picker for anything
// else. It reports whether a line was added.
func (s *PickerService) Tap(ctx context.Context, surface string, sel *ordering.Selector, productID string, composer ordering.Composer) (bool, error) {
	product, err := s.orderable(ctx, productID)
	if err != nil {
		return false, err
	}

	added, err := ordering.NewPicker(sel, composer).QuickAdd(ctx, product)
	if err != nil {
		return false, err
	}
	if added {
		observability.MeterFromContext(ctx).Count("picker.quick_add", 1,
			sentry.WithAttributes(attribute.String("picker.surface", surface)))
		return true, nil
	}
	sel.Open(product)
	return false, nil
}

func (s *PickerService) orderable(ctx context.Context, productID string) (*catalog.Product, error) {
	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Orderable() {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
	}
	return product, nil
}
