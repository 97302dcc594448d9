package handlers

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/ui/views"
)

func (h *Handlers) Cart(w http.ResponseWriter, r *http.Request) {
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cart, err := h.carts.Cart(r.Context(), callerFor(sess))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, cart, func() templ.Component { return views.CartPanel(cart) })
}

func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cart, err := h.carts.Remove(r.Context(), callerFor(sess), mux.Vars(r)["variantId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, cart, func() templ.Component { return views.CartPanel(cart) })
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := readFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.carts.Checkout(ctx, callerFor(sess), models.CheckoutRequest{
		Type:    models.OrderType(in.String("type")),
		TableID: in.String("tableId"),
		Address: in.String("address"),
		Phone:   in.String("phone"),
		Note:    in.String("note"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", menuSurface.trigger)
		h.renderSuccess(w, r, http.StatusCreated, "Order placed")
		return
	}
	h.writeJSON(w, ctx, http.StatusCreated, order)
}
