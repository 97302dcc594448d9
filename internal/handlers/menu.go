package handlers

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/services"
	"github.com/tablesideapp/tableside/ui/views"
)

const (
	defaultRecommendations = 6
	maxRecommendations     = 20
)

// Menu lists the products customers can see. Unavailable products are
// listed but cannot be opened.
func (h *Handlers) Menu(w http.ResponseWriter, r *http.Request) {
	products, err := h.menu.Visible(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, products, func() templ.Component {
		return views.MenuGrid(products, func(string) string { return menuSurface.basePath + "/open" })
	})
}

// POSMenu is the menu grid for employees; taps quick-add single-variant products.
func (h *Handlers) POSMenu(w http.ResponseWriter, r *http.Request) {
	products, err := h.menu.Visible(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, products, func() templ.Component {
		return views.MenuGrid(products, func(id string) string { return "/pos/products/" + id + "/tap" })
	})
}

func (h *Handlers) Product(w http.ResponseWriter, r *http.Request) {
	product, err := h.menu.Product(r.Context(), mux.Vars(r)["id"])
	if err == nil && !product.Visible() {
		err = services.ErrProductNotFound
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r.Context(), http.StatusOK, product)
}

func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecommendations
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxRecommendations)
	}

	sess := h.sessionFromRequest(r.Context(), r)
	products, err := h.menu.Recommendations(r.Context(), callerFor(sess), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	h.respond(w, r, http.StatusOK, products, func() templ.Component {
		return views.MenuGrid(products, func(string) string { return menuSurface.basePath + "/open" })
	})
}
