package catalog

import (
	"strings"
	"testing"
)

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	valid := func() Product {
		return Product{
			ID:        "iced-tea",
			Name:      "Iced Tea",
			BasePrice: 18000,
			Status:    StatusAvailable,
			VariantAxes: []VariantAxis{
				{Name: "size", Options: []string{"S", "M", "L"}},
			},
			Variants: []Variant{{ID: "iced-tea-m", Value: "M", Stock: 5, Price: 20000}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr string
	}{
		{
			name:   "valid product",
			mutate: func(p *Product) {},
		},
		{
			name:    "missing name",
			mutate:  func(p *Product) { p.Name = " " },
			wantErr: "product name is required",
		},
		{
			name:    "unknown status",
			mutate:  func(p *Product) { p.Status = "Archived" },
			wantErr: "unsupported product status",
		},
		{
			name: "duplicate axis",
			mutate: func(p *Product) {
				p.VariantAxes = append(p.VariantAxes, VariantAxis{Name: "size", Options: []string{"XL"}})
			},
			wantErr: "duplicate axis name",
		},
		{
			name:    "empty options",
			mutate:  func(p *Product) { p.VariantAxes[0].Options = nil },
			wantErr: "axis options cannot be empty",
		},
		{
			name: "default axis must come first",
			mutate: func(p *Product) {
				p.VariantAxes = append(p.VariantAxes, VariantAxis{Name: "type", Type: AxisTypeDefault, Options: []string{"default"}})
			},
			wantErr: "default axis must be the first axis",
		},
		{
			name:    "negative stock",
			mutate:  func(p *Product) { p.Variants[0].Stock = -1 },
			wantErr: "stock must be zero or positive",
		},
		{
			name: "duplicate variant id",
			mutate: func(p *Product) {
				p.Variants = append(p.Variants, Variant{ID: "iced-tea-m", Value: "L", Stock: 1})
			},
			wantErr: "duplicate variant id",
		},
	}

	validator := NewValidator()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			product := valid()
			tt.mutate(&product)

			err := validator.Validate(&MenuFile{Products: []Product{product}})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidator_RejectsDuplicateProductIDs(t *testing.T) {
	t.Parallel()

	product := Product{ID: "combo-a", Name: "Combo A", Status: StatusAvailable}
	err := NewValidator().Validate(&MenuFile{Products: []Product{product, product}})
	if err == nil || !strings.Contains(err.Error(), "duplicate product id") {
		t.Fatalf("expected duplicate product id error, got %v", err)
	}
}

func TestIntegrityIssues(t *testing.T) {
	t.Parallel()

	product := &Product{
		ID: "iced-tea",
		VariantAxes: []VariantAxis{
			{Name: "size", Options: []string{"S", "M"}},
		},
		Variants: []Variant{
			{ID: "a", Value: "M"},
			{ID: "b", Value: "M"},
			{ID: "c", Value: "XL"},
		},
	}

	issues := IntegrityIssues(product)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d (%v)", len(issues), issues)
	}
	if !strings.Contains(issues[0], "duplicate") || !strings.Contains(issues[1], "XL") {
		t.Fatalf("unexpected issues: %v", issues)
	}

	combo := &Product{
		ID:          "combo-a",
		VariantAxes: []VariantAxis{{Name: "type", Type: AxisTypeDefault, Options: []string{"default"}}},
		Variants:    []Variant{{ID: "x", Value: "regular"}},
	}
	if issues := IntegrityIssues(combo); len(issues) != 1 {
		t.Fatalf("expected missing default variant issue, got %v", issues)
	}
}
