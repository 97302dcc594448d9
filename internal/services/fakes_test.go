package services

import (
	"context"
	"sync"
	"time"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/tracking"
)

func icedTea() catalog.Product {
	return catalog.Product{
		ID:        "iced-tea",
		Name:      "Iced Tea",
		BasePrice: 3000,
		Status:    catalog.StatusAvailable,
		VariantAxes: []catalog.VariantAxis{
			{Name: "Size", Options: []string{"M", "L"}},
			{Name: "Ice", Options: []string{"Normal", "Less"}},
		},
		Variants: []catalog.Variant{
			{ID: "v-m-normal", Value: "M / Normal", Stock: 5},
			{ID: "v-l-less", Value: "L / Less", Stock: 2, Price: 3500},
		},
	}
}

func comboA() catalog.Product {
	return catalog.Product{
		ID:          "combo-a",
		Name:        "Combo A",
		BasePrice:   5500,
		Status:      catalog.StatusAvailable,
		VariantAxes: []catalog.VariantAxis{{Name: "Type", Type: catalog.AxisTypeDefault, Options: []string{"default"}}},
		Variants:    []catalog.Variant{{ID: "combo-a-default", Value: "default", Stock: 3}},
	}
}

func seasonal() catalog.Product {
	return catalog.Product{ID: "seasonal", Name: "Seasonal", BasePrice: 4000, Status: catalog.StatusUnavailable}
}

func retired() catalog.Product {
	return catalog.Product{ID: "retired", Name: "Retired", BasePrice: 1000, Status: catalog.StatusDeleted}
}

type fakeSource struct {
	mu       sync.Mutex
	products []catalog.Product
	calls    int
	delay    time.Duration
	err      error
}

func (s *fakeSource) ListProducts(context.Context) ([]catalog.Product, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeBackend struct {
	mu sync.Mutex

	addErr      error
	added       []string
	cart        models.Cart
	removed     []string
	checkouts   []models.CheckoutRequest
	created     []models.NewOrder
	createErr   error
	reservation []models.Reservation
	statuses    map[string]catalog.ProductStatus
	recs        []models.Recommendation
	lastCaller  backend.Caller
}

func (b *fakeBackend) AddToCart(_ context.Context, caller backend.Caller, variantID string, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCaller = caller
	if b.addErr != nil {
		return b.addErr
	}
	b.added = append(b.added, variantID)
	b.cart.Items = append(b.cart.Items, models.CartItem{VariantID: variantID, Quantity: quantity})
	return nil
}

func (b *fakeBackend) GetCart(_ context.Context, caller backend.Caller) (*models.Cart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCaller = caller
	cart := b.cart
	return &cart, nil
}

func (b *fakeBackend) RemoveCartItem(_ context.Context, _ backend.Caller, variantID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed = append(b.removed, variantID)
	items := b.cart.Items[:0]
	for _, item := range b.cart.Items {
		if item.VariantID != variantID {
			items = append(items, item)
		}
	}
	b.cart.Items = items
	return nil
}

func (b *fakeBackend) Checkout(_ context.Context, _ backend.Caller, req models.CheckoutRequest) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkouts = append(b.checkouts, req)
	return &models.Order{ID: "o-1", Type: req.Type}, nil
}

func (b *fakeBackend) CreateOrder(_ context.Context, _ backend.Caller, req models.NewOrder) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.created = append(b.created, req)
	return &models.Order{ID: "o-2", Type: req.Type, TableID: req.TableID}, nil
}

func (b *fakeBackend) CreateReservation(_ context.Context, _ backend.Caller, r models.Reservation) (*models.Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reservation = append(b.reservation, r)
	r.ID = "r-1"
	return &r, nil
}

func (b *fakeBackend) UpdateProductStatus(_ context.Context, _ backend.Caller, productID string, status catalog.ProductStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.statuses == nil {
		b.statuses = make(map[string]catalog.ProductStatus)
	}
	b.statuses[productID] = status
	return nil
}

func (b *fakeBackend) Recommendations(context.Context, backend.Caller, int) ([]models.Recommendation, error) {
	return b.recs, nil
}

type recordingTracker struct {
	mu     sync.Mutex
	events []tracking.Event
}

func (t *recordingTracker) Track(_ context.Context, _ string, event tracking.Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
	return true
}
