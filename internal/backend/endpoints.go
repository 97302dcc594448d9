package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/tracking"
)

// ListProducts returns every product including unavailable and deleted ones.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products", Caller{}, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for i := range products {
		if products[i].Status == "" {
			products[i].Status = catalog.StatusAvailable
		}
	}
	return products, nil
}

func (c *Client) UpdateProductStatus(ctx context.Context, caller Caller, productID string, status catalog.ProductStatus) error {
	path := "/products/" + url.PathEscape(productID) + "/status"
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, path, caller, body, nil); err != nil {
		return fmt.Errorf("failed to update product %s status: %w", productID, err)
	}
	return nil
}

func (c *Client) Recommendations(ctx context.Context, caller Caller, limit int) ([]models.Recommendation, error) {
	path := "/recommendations"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var recs []models.Recommendation
	if err := c.do(ctx, http.MethodGet, path, caller, nil, &recs); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return recs, nil
}

func (c *Client) AddToCart(ctx context.Context, caller Caller, variantID string, quantity int) error {
	body := struct {
		VariantID string `json:"variantId"`
		Quantity  int    `json:"quantity"`
	}{VariantID: variantID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/cart/items", caller, body, nil); err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

func (c *Client) GetCart(ctx context.Context, caller Caller) (*models.Cart, error) {
	var cart models.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", caller, nil, &cart); err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, caller Caller, variantID string) error {
	if err := c.do(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(variantID), caller, nil, nil); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (c *Client) Checkout(ctx context.Context, caller Caller, req models.CheckoutRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/cart/checkout", caller, req, &order); err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	return &order, nil
}

func (c *Client) CreateOrder(ctx context.Context, caller Caller, req models.NewOrder) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", caller, req, &order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, caller Caller, status string) ([]models.Order, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, path, caller, nil, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, caller Caller, orderID, status string) (*models.Order, error) {
	var order models.Order
	path := "/orders/" + url.PathEscape(orderID) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, caller, models.StatusUpdate{Status: status}, &order); err != nil {
		return nil, fmt.Errorf("failed to update order %s status: %w", orderID, err)
	}
	return &order, nil
}

func (c *Client) ListTables(ctx context.Context, caller Caller) ([]models.Table, error) {
	var tables []models.Table
	if err := c.do(ctx, http.MethodGet, "/tables", caller, nil, &tables); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (c *Client) UpdateTableStatus(ctx context.Context, caller Caller, tableID, status string) (*models.Table, error) {
	var table models.Table
	path := "/tables/" + url.PathEscape(tableID) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, caller, models.StatusUpdate{Status: status}, &table); err != nil {
		return nil, fmt.Errorf("failed to update table %s status: %w", tableID, err)
	}
	return &table, nil
}

func (c *Client) CreateReservation(ctx context.Context, caller Caller, reservation models.Reservation) (*models.Reservation, error) {
	var created models.Reservation
	if err := c.do(ctx, http.MethodPost, "/reservations", caller, reservation, &created); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return &created, nil
}

type behaviorPayload struct {
	Subject   string       `json:"subject"`
	Kind      string       `json:"kind"`
	ProductID string       `json:"productId,omitempty"`
	Data      behaviorData `json:"data"`
}

type behaviorData struct {
	Quantity  int   `json:"quantity"`
	Timestamp int64 `json:"timestamp"`
}

// TrackBehavior implements tracking.Sender.
func (c *Client) TrackBehavior(ctx context.Context, subject string, event tracking.Event) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	body := behaviorPayload{
		Subject:   subject,
		Kind:      event.Kind,
		ProductID: event.ProductID,
		Data: behaviorData{
			Quantity:  event.Quantity,
			Timestamp: ts.UnixMilli(),
		},
	}
	if err := c.do(ctx, http.MethodPost, "/behaviors", Caller{}, body, nil); err != nil {
		return fmt.Errorf("failed to track %s behavior: %w", event.Kind, err)
	}
	return nil
}
