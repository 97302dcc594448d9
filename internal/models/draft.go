package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftOrder is an employee's order being composed at the POS before it is
// submitted to the backend.
type DraftOrder struct {
	ID         uuid.UUID   `json:"id"`
	EmployeeID string      `json:"employee_id"`
	Lines      []DraftLine `json:"lines"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type DraftLine struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	VariantID    string `json:"variant_id"`
	VariantValue string `json:"variant_value"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
}

// AddLine merges line into the draft; lines for the same variant add up.
func (d *DraftOrder) AddLine(line DraftLine) {
	for i := range d.Lines {
		if d.Lines[i].VariantID == line.VariantID {
			d.Lines[i].Quantity += line.Quantity
			d.Lines[i].UnitPrice = line.UnitPrice
			return
		}
	}
	d.Lines = append(d.Lines, line)
}

// RemoveLine drops the line for variantID and reports whether it existed.
func (d *DraftOrder) RemoveLine(variantID string) bool {
	for i := range d.Lines {
		if d.Lines[i].VariantID == variantID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			return true
		}
	}
	return false
}

func (d *DraftOrder) IsEmpty() bool {
	return d == nil || len(d.Lines) == 0
}
