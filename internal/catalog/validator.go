package catalog

import (
	"fmt"
	"strings"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(menu *MenuFile) error {
	if menu == nil || len(menu.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	ids := make(map[string]bool)
	for i, product := range menu.Products {
		if err := v.ValidateProduct(&product); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}

		if ids[product.ID] {
			return fmt.Errorf("duplicate product id: %s", product.ID)
		}
		ids[product.ID] = true
	}

	return nil
}

func (v *Validator) ValidateProduct(product *Product) error {
	if strings.TrimSpace(product.ID) == "" {
		return fmt.Errorf("product id is required")
	}

	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if product.BasePrice < 0 {
		return fmt.Errorf("product base price must be zero or positive")
	}

	switch product.Status {
	case StatusAvailable, StatusUnavailable, StatusDeleted:
	default:
		return fmt.Errorf("unsupported product status: %q", product.Status)
	}

	axisNames := make(map[string]bool)
	for i, axis := range product.VariantAxes {
		if err := v.validateAxis(i, &axis); err != nil {
			return fmt.Errorf("axis %d validation failed: %w", i, err)
		}

		if axisNames[axis.Name] {
			return fmt.Errorf("duplicate axis name: %s", axis.Name)
		}
		axisNames[axis.Name] = true
	}

	variantIDs := make(map[string]bool)
	for i, variant := range product.Variants {
		if strings.TrimSpace(variant.ID) == "" {
			return fmt.Errorf("variant %d: id is required", i)
		}
		if variantIDs[variant.ID] {
			return fmt.Errorf("duplicate variant id: %s", variant.ID)
		}
		variantIDs[variant.ID] = true

		if variant.Stock < 0 {
			return fmt.Errorf("variant %s: stock must be zero or positive", variant.ID)
		}
		if variant.Price < 0 {
			return fmt.Errorf("variant %s: price must be zero or positive", variant.ID)
		}
	}

	return nil
}

func (v *Validator) validateAxis(position int, axis *VariantAxis) error {
	if strings.TrimSpace(axis.Name) == "" {
		return fmt.Errorf("axis name is required")
	}

	if axis.Type == AxisTypeDefault {
		if position != 0 {
			return fmt.Errorf("default axis must be the first axis")
		}
		return nil
	}

	if len(axis.Options) == 0 {
		return fmt.Errorf("axis options cannot be empty")
	}

	seen := make(map[string]bool)
	for _, option := range axis.Options {
		if strings.TrimSpace(option) == "" {
			return fmt.Errorf("axis option cannot be blank")
		}
		if seen[option] {
			return fmt.Errorf("duplicate option %q", option)
		}
		seen[option] = true
	}

	return nil
}

// IntegrityIssues describes variants the resolver cannot serve. The backend
// guarantees none of these, so callers log them rather than fail.
func IntegrityIssues(p *Product) []string {
	ix := NewIndex(p)
	var issues []string
	for _, value := range ix.Duplicates() {
		issues = append(issues, fmt.Sprintf("duplicate composite value %q", value))
	}
	for _, value := range ix.Unmatched() {
		issues = append(issues, fmt.Sprintf("composite value %q does not match declared options", value))
	}
	if p.IsSingleVariant() && len(p.Variants) > 0 {
		if _, ok := ix.Resolve(nil); !ok {
			issues = append(issues, "single-variant product has no default variant")
		}
	}
	return issues
}
