package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/ordering"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func icedTea() *catalog.Product {
	return &catalog.Product{
		ID:        "p-tea",
		Name:      "Iced <Tea>",
		BasePrice: 3000,
		Status:    catalog.StatusAvailable,
		VariantAxes: []catalog.VariantAxis{
			{Name: "Size", Options: []string{"M", "L"}},
		},
		Variants: []catalog.Variant{
			{ID: "v-m", Value: "M", Stock: 3},
			{ID: "v-l", Value: "L", Stock: 0, Price: 3500},
		},
	}
}

func TestPickerPanel(t *testing.T) {
	t.Parallel()

	sel := ordering.NewSelector(nil)
	sel.Open(icedTea())
	if err := sel.Toggle("Size", "M"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	out := render(t, PickerPanel("/menu/picker", sel.View()))

	for _, want := range []string{
		`hx-post="/menu/picker/toggle"`,
		`Iced &lt;Tea&gt;`,
		`aria-pressed="true"`,
		`data-quantity>1<`,
		`hx-post="/menu/picker/commit"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
	if strings.Contains(out, "<Tea>") {
		t.Fatalf("product name was not escaped: %s", out)
	}
}

func TestPickerPanelOutOfStock(t *testing.T) {
	t.Parallel()

	sel := ordering.NewSelector(nil)
	sel.Open(icedTea())
	if err := sel.Toggle("Size", "L"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	out := render(t, PickerPanel("/pos/picker", sel.View()))
	if !strings.Contains(out, ordering.LabelOutOfStock) {
		t.Fatalf("expected out of stock label in %s", out)
	}
	if !strings.Contains(out, `disabled>Add`) {
		t.Fatalf("expected disabled commit button in %s", out)
	}
}

func TestPickerPanelClosed(t *testing.T) {
	t.Parallel()

	out := render(t, PickerPanel("/menu/picker", ordering.View{State: "empty"}))
	if out != `<section id="picker" data-state="empty" class="space-y-4"></section>` {
		t.Fatalf("unexpected closed markup %q", out)
	}
}

func TestMenuGrid(t *testing.T) {
	t.Parallel()

	seasonal := catalog.Product{ID: "p-seasonal", Name: "Seasonal", Status: catalog.StatusUnavailable}
	products := []catalog.Product{*icedTea(), seasonal}

	out := render(t, MenuGrid(products, func(id string) string { return "/menu/picker/open" }))

	if strings.Count(out, `hx-post="/menu/picker/open"`) != 1 {
		t.Fatalf("expected one tappable product in %s", out)
	}
	if !strings.Contains(out, "Unavailable") {
		t.Fatalf("expected unavailable product to be labelled: %s", out)
	}
}

func TestCartPanel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cart *models.Cart
		want string
	}{
		{name: "nil cart", cart: nil, want: "Your cart is empty"},
		{name: "empty cart", cart: &models.Cart{}, want: "Your cart is empty"},
		{
			name: "with items",
			cart: &models.Cart{
				Items:    []models.CartItem{{ProductName: "Iced Tea", VariantID: "v-m", VariantValue: "M", Quantity: 2, LineTotal: 6000}},
				Subtotal: 6000,
			},
			want: `hx-delete="/cart/items/v-m"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := render(t, CartPanel(tt.cart))
			if !strings.Contains(out, tt.want) {
				t.Fatalf("expected %q in %s", tt.want, out)
			}
		})
	}
}

func TestDraftPanel(t *testing.T) {
	t.Parallel()

	draft := &models.DraftOrder{Lines: []models.DraftLine{
		{ProductName: "Combo A", VariantID: "v-combo", VariantValue: "default", Quantity: 1, UnitPrice: 5500},
	}}

	out := render(t, DraftPanel(draft, []int64{5500}, 5500))
	if strings.Contains(out, "<small") {
		t.Fatalf("default variant value should not be shown: %s", out)
	}
	if !strings.Contains(out, `hx-delete="/pos/draft/lines/v-combo"`) {
		t.Fatalf("expected remove action in %s", out)
	}
}

func TestToast(t *testing.T) {
	t.Parallel()

	out := render(t, Toast("Out of <stock>", false))
	if !strings.Contains(out, "text-rose-800") || !strings.Contains(out, "Out of &lt;stock&gt;") {
		t.Fatalf("unexpected toast %s", out)
	}
}
