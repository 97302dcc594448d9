package ordering

import (
	"log/slog"

	"github.com/tablesideapp/tableside/internal/catalog"
)

// Snapshot is the persisted form of a Selector between requests.
type Snapshot struct {
	ProductID string            `json:"product_id"`
	Selection map[string]string `json:"selection,omitempty"`
	Quantity  int               `json:"quantity"`
}

func (s Snapshot) IsZero() bool {
	return s.ProductID == ""
}

func (s *Selector) Snapshot() Snapshot {
	if s.product == nil {
		return Snapshot{}
	}
	return Snapshot{
		ProductID: s.product.ID,
		Selection: s.Selection(),
		Quantity:  s.quantity,
	}
}

// Restore rebuilds a Selector from snap against the current product data.
// A catalog refresh between requests does not invalidate the selection.
func Restore(logger *slog.Logger, p *catalog.Product, snap Snapshot) *Selector {
	s := NewSelector(logger)
	if p == nil || snap.IsZero() || p.ID != snap.ProductID {
		return s
	}
	s.refresh(p, snap.Selection, snap.Quantity)
	return s
}
