package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tablesideapp/tableside/internal/ordering"
	"github.com/tablesideapp/tableside/internal/services"
	"github.com/tablesideapp/tableside/internal/session"
	"github.com/tablesideapp/tableside/ui/views"
)

// pickerSurface ties a picker to its routes and to the event htmx panels
// listen on after a commit.
type pickerSurface struct {
	name     string
	basePath string
	trigger  string
}

var (
	menuSurface = pickerSurface{name: services.SurfaceMenu, basePath: "/menu/picker", trigger: "cart-updated"}
	posSurface  = pickerSurface{name: services.SurfacePOS, basePath: "/pos/picker", trigger: "draft-updated"}
)

// pickerOp mutates the restored selector. The snapshot is saved afterwards
// whether or not op fails, so a failed commit keeps the selection.
type pickerOp func(ctx context.Context, r *http.Request, sess *session.Data, sel *ordering.Selector) error

func (h *Handlers) pickerHandler(surface pickerSurface, op pickerOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := h.requireSession(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		sel, err := h.pickers.Restore(ctx, sess.Picker(surface.name))
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		var opErr error
		if op != nil {
			opErr = op(ctx, r, sess, sel)
		}

		sess.SetPicker(surface.name, sel.Snapshot())
		if err := h.saveSession(ctx, r, sess); err != nil {
			h.writeError(w, r, err)
			return
		}
		if opErr != nil {
			h.writeError(w, r, opErr)
			return
		}

		view := sel.View()
		h.respond(w, r, http.StatusOK, view, func() templ.Component {
			return views.PickerPanel(surface.basePath, view)
		})
	}
}

func (h *Handlers) pickerView(surface pickerSurface) http.HandlerFunc {
	return h.pickerHandler(surface, nil)
}

func (h *Handlers) pickerOpen(surface pickerSurface) http.HandlerFunc {
	return h.pickerHandler(surface, func(ctx context.Context, r *http.Request, _ *session.Data, sel *ordering.Selector) error {
		in, err := readFields(r)
		if err != nil {
			return err
		}
		productID := in.String("productId")
		if productID == "" {
			return fmt.Errorf("%w: productId is required", services.ErrInvalidInput)
		}
		return h.pickers.Open(ctx, sel, productID)
	})
}

func (h *Handlers) pickerToggle(surface pickerSurface) http.HandlerFunc {
	return h.pickerHandler(surface, func(_ context.Context, r *http.Request, _ *session.Data, sel *ordering.Selector) error {
		in, err := readFields(r)
		if err != nil {
			return err
		}
		return sel.Toggle(in.Raw("axis"), in.Raw("option"))
	})
}

// pickerQuantity accepts an absolute quantity or a delta. Both are clamped
// to the resolved variant's bounds.
func (h *Handlers) pickerQuantity(surface pickerSurface) http.HandlerFunc {
	return h.pickerHandler(surface, func(_ context.Context, r *http.Request, _ *session.Data, sel *ordering.Selector) error {
		in, err := readFields(r)
		if err != nil {
			return err
		}
		if sel.Product() == nil {
			return ordering.ErrNoProduct
		}

		if quantity, ok, err := in.Int("quantity"); err != nil {
			return err
		} else if ok {
			sel.SetQuantity(quantity)
			return nil
		}

		delta, ok, err := in.Int("delta")
		if err != nil {
			return err
		}
		switch {
		case !ok:
			return fmt.Errorf("%w: quantity or delta is required", services.ErrInvalidInput)
		case delta == 1:
			sel.Increment()
		case delta == -1:
			sel.Decrement()
		default:
			sel.Step(delta)
		}
		return nil
	})
}

func (h *Handlers) pickerClose(surface pickerSurface) http.HandlerFunc {
	return h.pickerHandler(surface, func(_ context.Context, _ *http.Request, _ *session.Data, sel *ordering.Selector) error {
		sel.Close()
		return nil
	})
}

func (h *Handlers) pickerCommit(surface pickerSurface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.pickerHandler(surface, func(ctx context.Context, r *http.Request, sess *session.Data, sel *ordering.Selector) error {
			composer := h.composerFor(sess, surface)
			if _, err := h.pickers.Commit(ctx, surface.name, sel, composer); err != nil {
				return err
			}
			w.Header().Set("HX-Trigger", surface.trigger)
			return nil
		})(w, r)
	}
}

// POSTap quick-adds a single-variant product to the draft order or opens the
// POS picker for products with axes.
func (h *Handlers) POSTap(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]
	h.pickerHandler(posSurface, func(ctx context.Context, _ *http.Request, sess *session.Data, sel *ordering.Selector) error {
		added, err := h.pickers.Tap(ctx, posSurface.name, sel, productID, h.composerFor(sess, posSurface))
		if err != nil {
			return err
		}
		if added {
			w.Header().Set("HX-Trigger", posSurface.trigger)
		}
		return nil
	})(w, r)
}

// composerFor returns where committed lines go: the backend cart for the
// customer menu, the employee's draft order for the POS. A POS session gets
// its draft id on first use.
func (h *Handlers) composerFor(sess *session.Data, surface pickerSurface) ordering.Composer {
	if surface.name == services.SurfacePOS {
		if sess.DraftOrderID == uuid.Nil {
			sess.DraftOrderID = uuid.New()
		}
		return h.composers.Draft(sess.DraftOrderID, sess.Subject())
	}
	return h.composers.Cart(callerFor(sess), sess.Subject())
}

// PickerRoutes are the handlers of one surface's picker.
type PickerRoutes struct {
	View, Open, Toggle, Quantity, Close, Commit http.HandlerFunc
}

func (h *Handlers) MenuPickerRoutes() PickerRoutes { return h.pickerRoutes(menuSurface) }
func (h *Handlers) POSPickerRoutes() PickerRoutes  { return h.pickerRoutes(posSurface) }

func (h *Handlers) pickerRoutes(surface pickerSurface) PickerRoutes {
	return PickerRoutes{
		View:     h.pickerView(surface),
		Open:     h.pickerOpen(surface),
		Toggle:   h.pickerToggle(surface),
		Quantity: h.pickerQuantity(surface),
		Close:    h.pickerClose(surface),
		Commit:   h.pickerCommit(surface),
	}
}
