package catalog

import "slices"

type ProductStatus string

const (
	StatusAvailable   ProductStatus = "Available"
	StatusUnavailable ProductStatus = "Unavailable"
	StatusDeleted     ProductStatus = "Deleted"
)

const (
	// AxisTypeDefault on the first axis marks a product with a single implicit variant.
	AxisTypeDefault = "default"
	// DefaultVariantValue is the composite value of the implicit variant.
	DefaultVariantValue = "default"
	// ValueSeparator joins one option per axis into a variant's composite value.
	ValueSeparator = " / "
)

type VariantAxis struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type,omitempty" yaml:"type"`
	Options []string `json:"options" yaml:"options"`
}

func (a VariantAxis) HasOption(option string) bool {
	return slices.Contains(a.Options, option)
}

type Variant struct {
	ID    string `json:"id" yaml:"id"`
	Value string `json:"value" yaml:"value"`
	Stock int    `json:"stock" yaml:"stock"`
	Price int64  `json:"price" yaml:"price"`
}

type Product struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	BasePrice   int64         `json:"basePrice" yaml:"base_price"`
	Images      []string      `json:"images" yaml:"images"`
	Status      ProductStatus `json:"status" yaml:"status"`
	VariantAxes []VariantAxis `json:"variantAxes" yaml:"variant_axes"`
	Variants    []Variant     `json:"variants" yaml:"variants"`
}

// IsSingleVariant reports whether the product skips axis selection.
func (p *Product) IsSingleVariant() bool {
	if p == nil {
		return false
	}
	if len(p.VariantAxes) == 0 {
		return true
	}
	return p.VariantAxes[0].Type == AxisTypeDefault
}

func (p *Product) Axis(name string) (VariantAxis, bool) {
	if p == nil {
		return VariantAxis{}, false
	}
	for _, axis := range p.VariantAxes {
		if axis.Name == name {
			return axis, true
		}
	}
	return VariantAxis{}, false
}

// PriceOf returns the variant price, falling back to the product base price.
func (p *Product) PriceOf(v Variant) int64 {
	if v.Price > 0 {
		return v.Price
	}
	if p == nil {
		return 0
	}
	return p.BasePrice
}

func (p *Product) Variant(id string) (Variant, bool) {
	if p == nil {
		return Variant{}, false
	}
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Orderable reports whether customers may open the product.
func (p *Product) Orderable() bool {
	return p != nil && p.Status == StatusAvailable
}

// Visible reports whether the product is shown on the menu at all.
func (p *Product) Visible() bool {
	return p != nil && p.Status != StatusDeleted
}

// Selection maps axis name to the chosen option; "" means unset.
type Selection map[string]string

// NewSelection returns a selection with every axis of p unset.
func NewSelection(p *Product) Selection {
	sel := Selection{}
	if p == nil || p.IsSingleVariant() {
		return sel
	}
	for _, axis := range p.VariantAxes {
		sel[axis.Name] = ""
	}
	return sel
}

// Complete reports whether every axis of p has a chosen option.
func (s Selection) Complete(p *Product) bool {
	if p == nil {
		return false
	}
	for _, axis := range p.VariantAxes {
		if s[axis.Name] == "" {
			return false
		}
	}
	return true
}

func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
