package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go/attribute"
	"github.com/go-playground/validator/v10"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/observability"
)

type cartBackend interface {
	GetCart(ctx context.Context, caller backend.Caller) (*models.Cart, error)
	RemoveCartItem(ctx context.Context, caller backend.Caller, variantID string) error
	Checkout(ctx context.Context, caller backend.Caller, req models.CheckoutRequest) (*models.Order, error)
}

type CartService struct {
	backend  cartBackend
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCartService(b cartBackend, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{backend: b, validate: newValidator(), logger: logger.With("component", "cart")}
}

func (s *CartService) Cart(ctx context.Context, caller backend.Caller) (*models.Cart, error) {
	return s.backend.GetCart(ctx, caller)
}

func (s *CartService) Remove(ctx context.Context, caller backend.Caller, variantID string) (*models.Cart, error) {
	if strings.TrimSpace(variantID) == "" {
		return nil, &ValidationError{Fields: map[string]string{"variantId": "is required"}}
	}
	if err := s.backend.RemoveCartItem(ctx, caller, variantID); err != nil {
		return nil, err
	}
	return s.backend.GetCart(ctx, caller)
}

// Checkout validates the request shape locally; totals and stock are
// checked upstream.
func (s *CartService) Checkout(ctx context.Context, caller backend.Caller, req models.CheckoutRequest) (order *models.Order, err error) {
	ctx, op := observability.StartOperation(ctx, "service.cart", "Checkout", "cart.checkout",
		attribute.String("order.type", string(req.Type)))
	defer func() { op.Finish(err) }()

	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	req.TableID = strings.TrimSpace(req.TableID)
	if err := validateInput(s.validate, req); err != nil {
		return nil, err
	}

	order, err = s.backend.Checkout(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("checkout completed", "order_id", order.ID, "type", req.Type)
	return order, nil
}
