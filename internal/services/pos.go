package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/models"
)

type floorBackend interface {
	ListOrders(ctx context.Context, caller backend.Caller, status string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, caller backend.Caller, orderID, status string) (*models.Order, error)
	ListTables(ctx context.Context, caller backend.Caller) ([]models.Table, error)
	UpdateTableStatus(ctx context.Context, caller backend.Caller, tableID, status string) (*models.Table, error)
}

// FloorService relays the kitchen board and table plan. Status transitions are
// decided by the backend; only the request shape is checked here.
type FloorService struct {
	backend  floorBackend
	validate *validator.Validate
	logger   *slog.Logger
}

func NewFloorService(b floorBackend, logger *slog.Logger) *FloorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FloorService{backend: b, validate: newValidator(), logger: logger.With("component", "floor")}
}

func (s *FloorService) Orders(ctx context.Context, caller backend.Caller, status string) ([]models.Order, error) {
	return s.backend.ListOrders(ctx, caller, strings.TrimSpace(status))
}

func (s *FloorService) UpdateOrderStatus(ctx context.Context, caller backend.Caller, orderID string, update models.StatusUpdate) (*models.Order, error) {
	if err := validateInput(s.validate, update); err != nil {
		return nil, err
	}
	order, err := s.backend.UpdateOrderStatus(ctx, caller, orderID, update.Status)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("order status changed", "order_id", orderID, "status", order.Status)
	return order, nil
}

func (s *FloorService) Tables(ctx context.Context, caller backend.Caller) ([]models.Table, error) {
	return s.backend.ListTables(ctx, caller)
}

func (s *FloorService) UpdateTableStatus(ctx context.Context, caller backend.Caller, tableID string, update models.StatusUpdate) (*models.Table, error) {
	if err := validateInput(s.validate, update); err != nil {
		return nil, err
	}
	table, err := s.backend.UpdateTableStatus(ctx, caller, tableID, update.Status)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("table status changed", "table_id", tableID, "status", table.Status)
	return table, nil
}
