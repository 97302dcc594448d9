package catalog

import "fmt"

// Pricer computes display totals for lines composed in the UI. Charged
// amounts always come from the backend.
type Pricer struct{}

func NewPricer() *Pricer {
	return &Pricer{}
}

// PricedLine is the minimum a pricer needs to total a composed line.
type PricedLine struct {
	UnitPrice int64
	Quantity  int
}

func (p *Pricer) UnitPrice(product *Product, variantID string) (int64, error) {
	if product == nil {
		return 0, fmt.Errorf("product is required")
	}

	variant, ok := product.Variant(variantID)
	if !ok {
		return 0, fmt.Errorf("variant %s not found on product %s", variantID, product.ID)
	}

	return product.PriceOf(variant), nil
}

func (p *Pricer) LineTotal(line PricedLine) int64 {
	if line.Quantity <= 0 || line.UnitPrice < 0 {
		return 0
	}
	return line.UnitPrice * int64(line.Quantity)
}

func (p *Pricer) Subtotal(lines []PricedLine) int64 {
	var total int64
	for _, line := range lines {
		total += p.LineTotal(line)
	}
	return total
}
