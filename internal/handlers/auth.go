package handlers

import (
	"net/http"
	"strings"

	"github.com/tablesideapp/tableside/ui/views"
)

type signInResponse struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// SignIn stores a backend-issued token in a fresh session. The guest id and
// picker state carry over; the old session id is discarded.
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	in, err := readFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	token := in.String("token")
	if token == "" {
		token = strings.TrimSpace(r.Header.Get("Authorization"))
	}

	current := h.sessionFromRequest(ctx, r)
	data, err := h.authService.SignIn(ctx, current, token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if current != nil {
		if err := h.sessionManager.DestroySession(ctx, w, r); err != nil {
			logger.Warn("failed to destroy previous session", "error", err)
		}
	}
	created, err := h.sessionManager.CreateSession(ctx, w, data)
	if err != nil {
		logger.Error("failed to create session", "error", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, ctx, http.StatusOK, signInResponse{Subject: created.Subject(), Role: created.Role})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.DestroySession(r.Context(), w, r); err != nil {
		h.loggerFromContext(r.Context()).Warn("failed to destroy session", "error", err)
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/menu")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r.Context(), views.NotFoundPage())
}
