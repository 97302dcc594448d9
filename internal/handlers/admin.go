package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tablesideapp/tableside/internal/catalog"
)

// AdminProducts lists every product, deleted ones included.
func (h *Handlers) AdminProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.adminService.Products(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	h.writeJSON(w, r.Context(), http.StatusOK, products)
}

func (h *Handlers) SetProductStatus(w http.ResponseWriter, r *http.Request) {
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

	productID := mux.Vars(r)["id"]
	status := catalog.ProductStatus(in.String("status"))
	if err := h.adminService.SetProductStatus(r.Context(), callerFor(sess), productID, status); err != nil {
		h.writeError(w, r, err)
		return
	}

	if isHTMX(r) {
		h.renderSuccess(w, r, http.StatusOK, "Product updated")
		return
	}
	h.writeJSON(w, r.Context(), http.StatusOK, map[string]string{"id": productID, "status": string(status)})
}
