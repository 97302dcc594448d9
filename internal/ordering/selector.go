// Package ordering holds the variant picker shared by the customer menu and
// the employee point of sale: the selection state, the quantity bounds and
// the hand-off to whatever composes the final line.
package ordering

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tablesideapp/tableside/internal/catalog"
)

type State int

const (
	StateEmpty State = iota
	StateSelecting
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateResolved:
		return "resolved"
	default:
		return "empty"
	}
}

var (
	ErrNoProduct     = errors.New("no product is open")
	ErrUnknownAxis   = errors.New("unknown variant axis")
	ErrUnknownOption = errors.New("option is not declared for axis")
	ErrSingleVariant = errors.New("product has no selectable axes")
)

// Selector holds the in-progress choice for one open product. It is not
// safe for concurrent use; each session surface owns its own Selector.
type Selector struct {
	logger    *slog.Logger
	product   *catalog.Product
	index     *catalog.Index
	selection catalog.Selection
	variant   *catalog.Variant
	quantity  int
}

func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Selector{logger: logger}
}

// Open starts a selection for p. Opening a different product discards the
// current one first; opening the same product again only refreshes its data.
// Resolution runs exactly once here, so single-variant products land in
// StateResolved without a second step.
func (s *Selector) Open(p *catalog.Product) {
	if p == nil {
		s.Close()
		return
	}
	if s.product != nil && s.product.ID == p.ID {
		s.refresh(p, s.selection, s.quantity)
		return
	}

	s.Close()
	s.load(p)
	s.selection = catalog.NewSelection(p)
	s.resolve()
}

// Toggle chooses option on axis, or clears it when it is already chosen.
func (s *Selector) Toggle(axis, option string) error {
	if s.product == nil {
		return ErrNoProduct
	}
	if s.product.IsSingleVariant() {
		return ErrSingleVariant
	}

	declared, ok := s.product.Axis(axis)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAxis, axis)
	}
	if !declared.HasOption(option) {
		return fmt.Errorf("%w: %q=%q", ErrUnknownOption, axis, option)
	}

	if s.selection[axis] == option {
		s.selection[axis] = ""
	} else {
		s.selection[axis] = option
	}

	s.resolve()
	return nil
}

// Close returns the selector to StateEmpty.
func (s *Selector) Close() {
	s.product = nil
	s.index = nil
	s.selection = nil
	s.variant = nil
	s.quantity = 0
}

func (s *Selector) State() State {
	switch {
	case s.product == nil:
		return StateEmpty
	case s.variant == nil:
		return StateSelecting
	default:
		return StateResolved
	}
}

func (s *Selector) Product() *catalog.Product {
	return s.product
}

func (s *Selector) Selection() catalog.Selection {
	if s.selection == nil {
		return catalog.Selection{}
	}
	return s.selection.Clone()
}

func (s *Selector) Resolved() (catalog.Variant, bool) {
	if s.variant == nil {
		return catalog.Variant{}, false
	}
	return *s.variant, true
}

func (s *Selector) Quantity() int {
	return s.quantity
}

func (s *Selector) Bounds() Bounds {
	return BoundsFor(s.variant)
}

// SetQuantity clamps requested into the current bounds and returns the held value.
func (s *Selector) SetQuantity(requested int) int {
	s.quantity = s.Bounds().Clamp(requested)
	return s.quantity
}

// Step moves the quantity by delta within the current bounds.
func (s *Selector) Step(delta int) int {
	s.quantity = s.Bounds().Step(s.quantity, delta)
	return s.quantity
}

func (s *Selector) Increment() int {
	return s.Step(1)
}

func (s *Selector) Decrement() int {
	return s.Step(-1)
}

// Available lists the options per axis that still reach a variant.
func (s *Selector) Available() map[string][]string {
	if s.index == nil {
		return map[string][]string{}
	}
	return s.index.Available(s.selection)
}

// resolve drops the previous variant before looking for a new one, then
// resets the quantity to the default for whatever resolved.
func (s *Selector) resolve() {
	s.variant = nil
	if v, ok := s.index.Resolve(s.selection); ok {
		s.variant = &v
	}
	s.quantity = s.Bounds().Default()
}

func (s *Selector) load(p *catalog.Product) {
	s.product = p
	s.index = catalog.NewIndex(p)

	for _, value := range s.index.Duplicates() {
		s.logger.Warn("duplicate variant composite value", "product_id", p.ID, "value", value)
	}
	for _, value := range s.index.Unmatched() {
		s.logger.Warn("variant value does not match declared options", "product_id", p.ID, "value", value)
	}
}

// refresh swaps in fresh product data while keeping the user's choices.
// Options that are no longer declared fall back to unset.
func (s *Selector) refresh(p *catalog.Product, previous catalog.Selection, quantity int) {
	s.load(p)

	s.selection = catalog.NewSelection(p)
	for name := range s.selection {
		option := previous[name]
		if axis, ok := p.Axis(name); ok && axis.HasOption(option) {
			s.selection[name] = option
		}
	}

	s.variant = nil
	if v, ok := s.index.Resolve(s.selection); ok {
		s.variant = &v
	}
	s.quantity = s.Bounds().Clamp(quantity)
}
