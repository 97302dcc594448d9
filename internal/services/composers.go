package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/ordering"
	"github.com/tablesideapp/tableside/internal/tracking"
)

type CartAdder interface {
	AddToCart(ctx context.Context, caller backend.Caller, variantID string, quantity int) error
}

type BehaviorTracker interface {
	Track(ctx context.Context, subject string, event tracking.Event) bool
}

// CartComposer adds lines to the customer's backend cart and records a cart
// behavior event once the add succeeded.
type CartComposer struct {
	cart    CartAdder
	tracker BehaviorTracker
	caller  backend.Caller
	subject string
}

func NewCartComposer(cart CartAdder, tracker BehaviorTracker, caller backend.Caller, subject string) *CartComposer {
	return &CartComposer{cart: cart, tracker: tracker, caller: caller, subject: subject}
}

func (c *CartComposer) Compose(ctx context.Context, line ordering.Line) error {
	if err := c.cart.AddToCart(ctx, c.caller, line.Variant.ID, line.Quantity); err != nil {
		return err
	}
	if c.tracker != nil {
		c.tracker.Track(ctx, c.subject, tracking.Event{
			Kind:      tracking.KindCart,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	return nil
}

type draftUpdater interface {
	Update(ctx context.Context, id uuid.UUID, employeeID string, fn func(*models.DraftOrder) error) (*models.DraftOrder, error)
}

// DraftComposer adds lines to an employee's draft order.
type DraftComposer struct {
	drafts     draftUpdater
	draftID    uuid.UUID
	employeeID string
}

func NewDraftComposer(drafts draftUpdater, draftID uuid.UUID, employeeID string) *DraftComposer {
	return &DraftComposer{drafts: drafts, draftID: draftID, employeeID: employeeID}
}

func (c *DraftComposer) Compose(ctx context.Context, line ordering.Line) error {
	if c.draftID == uuid.Nil {
		return fmt.Errorf("draft order id is required")
	}
	_, err := c.drafts.Update(ctx, c.draftID, c.employeeID, func(draft *models.DraftOrder) error {
		draft.AddLine(models.DraftLine{
			ProductID:    line.Product.ID,
			ProductName:  line.Product.Name,
			VariantID:    line.Variant.ID,
			VariantValue: line.Variant.Value,
			Quantity:     line.Quantity,
			UnitPrice:    line.Product.PriceOf(line.Variant),
		})
		return nil
	})
	return err
}

// Composers builds the composer for each surface per request.
type Composers struct {
	cart    CartAdder
	tracker BehaviorTracker
	drafts  draftUpdater
}

func NewComposers(cart CartAdder, tracker BehaviorTracker, drafts draftUpdater) *Composers {
	return &Composers{cart: cart, tracker: tracker, drafts: drafts}
}

func (c *Composers) Cart(caller backend.Caller, subject string) ordering.Composer {
	return NewCartComposer(c.cart, c.tracker, caller, subject)
}

func (c *Composers) Draft(draftID uuid.UUID, employeeID string) ordering.Composer {
	return NewDraftComposer(c.drafts, draftID, employeeID)
}
