package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/observability"
)

type productStatusUpdater interface {
	UpdateProductStatus(ctx context.Context, caller backend.Caller, productID string, status catalog.ProductStatus) error
}

type catalogReader interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Invalidate(ctx context.Context) error
}

type AdminService struct {
	products productStatusUpdater
	menu     catalogReader
	logger   *slog.Logger
}

func NewAdminService(products productStatusUpdater, menu catalogReader, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{products: products, menu: menu, logger: logger.With("component", "admin")}
}

// Products lists every product including deleted ones.
func (s *AdminService) Products(ctx context.Context) ([]catalog.Product, error) {
	return s.menu.Products(ctx)
}

func (s *AdminService) SetProductStatus(ctx context.Context, caller backend.Caller, productID string, status catalog.ProductStatus) (err error) {
	span := sentry.StartSpan(
		ctx,
		"service.admin.set_product_status",
		sentry.WithOpName("service.admin"),
		sentry.WithDescription("SetProductStatus"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	defer func() {
		if err != nil {
			span.Status = sentry.SpanStatusInternalError
			return
		}
		meter.Count("admin.product_status.changed", 1, sentry.WithAttributes(
			attribute.String("product.status", string(status)),
		))
		span.Status = sentry.SpanStatusOK
	}()

	switch status {
	case catalog.StatusAvailable, catalog.StatusUnavailable, catalog.StatusDeleted:
	default:
		return &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("must be one of %s %s %s",
			catalog.StatusAvailable, catalog.StatusUnavailable, catalog.StatusDeleted)}}
	}

	if err := s.products.UpdateProductStatus(ctx, caller, productID, status); err != nil {
		return err
	}

	logger := logging.FromContext(ctx, s.logger)
	if err := s.menu.Invalidate(ctx); err != nil {
		logger.Warn("failed to invalidate catalog after status change", "product_id", productID, "error", err)
	}
	logger.Info("product status changed", "product_id", productID, "status", status)
	return nil
}
