package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/db"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/observability"
)

var (
	ErrDraftNotFound = db.ErrDraftNotFound
	ErrDraftEmpty    = errors.New("draft order has no lines")
)

type DraftStore interface {
	Get(ctx context.Context, id uuid.UUID, employeeID string) (*models.DraftOrder, error)
	Update(ctx context.Context, id uuid.UUID, employeeID string, fn func(*models.DraftOrder) error) (*models.DraftOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

type orderCreator interface {
	CreateOrder(ctx context.Context, caller backend.Caller, req models.NewOrder) (*models.Order, error)
}

// DraftView is a draft with display totals. Charged totals come from the
// backend once the order is submitted.
type DraftView struct {
	Draft    *models.DraftOrder
	Totals   []int64
	Subtotal int64
}

type SubmitDraftInput struct {
	Type    models.OrderType
	TableID string
	Note    string
}

type DraftService struct {
	store    DraftStore
	orders   orderCreator
	pricer   *catalog.Pricer
	validate *validator.Validate
	logger   *slog.Logger
}

func NewDraftService(store DraftStore, orders orderCreator, logger *slog.Logger) *DraftService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DraftService{
		store:    store,
		orders:   orders,
		pricer:   catalog.NewPricer(),
		validate: newValidator(),
		logger:   logger.With("component", "drafts"),
	}
}

func (s *DraftService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Store exposes the store for composing lines into drafts.
func (s *DraftService) Store() DraftStore {
	return s.store
}

// View returns the draft, or an empty one when nothing was composed yet.
func (s *DraftService) View(ctx context.Context, id uuid.UUID, employeeID string) (*DraftView, error) {
	draft, err := s.store.Get(ctx, id, employeeID)
	if errors.Is(err, ErrDraftNotFound) {
		draft = &models.DraftOrder{ID: id, EmployeeID: employeeID}
	} else if err != nil {
		return nil, err
	}
	return s.view(draft), nil
}

func (s *DraftService) RemoveLine(ctx context.Context, id uuid.UUID, employeeID, variantID string) (*DraftView, error) {
	draft, err := s.store.Update(ctx, id, employeeID, func(d *models.DraftOrder) error {
		if !d.RemoveLine(variantID) {
			return fmt.Errorf("%w: no line for variant %s", ErrInvalidInput, variantID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(draft), nil
}

// Submit creates the order upstream and discards the draft.
func (s *DraftService) Submit(ctx context.Context, caller backend.Caller, id uuid.UUID, employeeID string, input SubmitDraftInput) (order *models.Order, err error) {
	ctx, op := observability.StartOperation(ctx, "service.drafts", "SubmitDraft", "drafts.submit")
	defer func() { op.Finish(err) }()

	draft, err := s.store.Get(ctx, id, employeeID)
	if err != nil {
		return nil, err
	}
	if draft.IsEmpty() {
		return nil, ErrDraftEmpty
	}

	req := models.NewOrder{
		Type:    input.Type,
		TableID: input.TableID,
		Note:    input.Note,
		Items:   make([]models.NewOrderItem, 0, len(draft.Lines)),
	}
	for _, line := range draft.Lines {
		req.Items = append(req.Items, models.NewOrderItem{VariantID: line.VariantID, Quantity: line.Quantity})
	}
	if err := validateInput(s.validate, req); err != nil {
		return nil, err
	}

	order, err = s.orders.CreateOrder(ctx, caller, req)
	if err != nil {
		return nil, err
	}

	logger := s.loggerFromContext(ctx)
	if err := s.store.Delete(ctx, id); err != nil {
		logger.Error("failed to delete submitted draft", "draft_id", id, "order_id", order.ID, "error", err)
	}
	logger.Info("draft order submitted", "draft_id", id, "order_id", order.ID, "lines", len(draft.Lines))
	return order, nil
}

func (s *DraftService) view(draft *models.DraftOrder) *DraftView {
	view := &DraftView{Draft: draft, Totals: make([]int64, len(draft.Lines))}
	lines := make([]catalog.PricedLine, len(draft.Lines))
	for i, line := range draft.Lines {
		lines[i] = catalog.PricedLine{UnitPrice: line.UnitPrice, Quantity: line.Quantity}
		view.Totals[i] = s.pricer.LineTotal(lines[i])
	}
	view.Subtotal = s.pricer.Subtotal(lines)
	return view
}
