package ordering

import "github.com/tablesideapp/tableside/internal/catalog"

// Bounds is the range the quantity controls accept for a resolved variant.
type Bounds struct {
	Min     int  `json:"min"`
	Max     int  `json:"max"`
	Enabled bool `json:"enabled"`
}

// BoundsFor returns [1, stock] for an in-stock variant. Without a variant,
// or with stock 0, the controls are disabled and pinned to 0.
func BoundsFor(v *catalog.Variant) Bounds {
	if v == nil || v.Stock <= 0 {
		return Bounds{}
	}
	return Bounds{Min: 1, Max: v.Stock, Enabled: true}
}

func (b Bounds) Clamp(requested int) int {
	if !b.Enabled {
		return 0
	}
	if requested < b.Min {
		return b.Min
	}
	if requested > b.Max {
		return b.Max
	}
	return requested
}

// Step moves current by delta and clamps, saturating instead of overflowing
// when delta is huge.
func (b Bounds) Step(current, delta int) int {
	if !b.Enabled {
		return 0
	}
	current = b.Clamp(current)
	switch {
	case delta > b.Max-current:
		return b.Max
	case delta < b.Min-current:
		return b.Min
	}
	return current + delta
}

// Default is the quantity set when a variant resolves.
func (b Bounds) Default() int {
	return b.Clamp(1)
}
