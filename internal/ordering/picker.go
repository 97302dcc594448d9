package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablesideapp/tableside/internal/catalog"
)

var (
	ErrNotResolved = errors.New("no variant is resolved")
	ErrOutOfStock  = errors.New("resolved variant is out of stock")
)

// Line is the final (variant, quantity) pair handed to a Composer.
type Line struct {
	Product  *catalog.Product
	Variant  catalog.Variant
	Quantity int
}

// Composer commits a line somewhere: the customer's cart or an employee's
// draft order.
type Composer interface {
	Compose(ctx context.Context, line Line) error
}

type ComposerFunc func(ctx context.Context, line Line) error

func (f ComposerFunc) Compose(ctx context.Context, line Line) error {
	return f(ctx, line)
}

// Picker binds a Selector to the Composer of one surface.
type Picker struct {
	selector *Selector
	composer Composer
}

func NewPicker(selector *Selector, composer Composer) *Picker {
	if selector == nil {
		selector = NewSelector(nil)
	}
	return &Picker{selector: selector, composer: composer}
}

func (p *Picker) Selector() *Selector {
	return p.selector
}

// Commit composes the resolved variant at the held quantity. On success the
// selector closes; on failure it is left untouched so the user can retry.
func (p *Picker) Commit(ctx context.Context) (Line, error) {
	variant, ok := p.selector.Resolved()
	if !ok {
		return Line{}, ErrNotResolved
	}
	if variant.Stock <= 0 || p.selector.Quantity() <= 0 {
		return Line{}, ErrOutOfStock
	}

	line := Line{
		Product:  p.selector.Product(),
		Variant:  variant,
		Quantity: p.selector.Quantity(),
	}
	if err := p.compose(ctx, line); err != nil {
		return line, err
	}

	p.selector.Close()
	return line, nil
}

// QuickAdd composes one unit of a single-variant product without opening
// the selector. It reports false for products that need axis selection.
func (p *Picker) QuickAdd(ctx context.Context, product *catalog.Product) (bool, error) {
	if product == nil || !product.IsSingleVariant() {
		return false, nil
	}

	variant, ok := catalog.Resolve(product, nil)
	if !ok {
		return true, ErrNotResolved
	}
	if variant.Stock <= 0 {
		return true, ErrOutOfStock
	}

	return true, p.compose(ctx, Line{Product: product, Variant: variant, Quantity: 1})
}

func (p *Picker) compose(ctx context.Context, line Line) error {
	if p.composer == nil {
		return fmt.Errorf("picker has no composer")
	}
	if err := p.composer.Compose(ctx, line); err != nil {
		return fmt.Errorf("failed to compose %s x%d: %w", line.Variant.ID, line.Quantity, err)
	}
	return nil
}
