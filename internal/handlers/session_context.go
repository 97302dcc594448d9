package handlers

import (
	"context"
	"net/http"

	"github.com/tablesideapp/tableside/internal/session"
)

func (h *Handlers) sessionFromRequest(ctx context.Context, r *http.Request) *session.Data {
	if ctx == nil {
		ctx = context.Background()
	}
	if sess := session.GetSessionFromContext(ctx); sess != nil {
		return sess
	}
	if h == nil || h.sessionManager == nil || r == nil {
		return nil
	}
	sess, err := h.sessionManager.GetSession(ctx, r)
	if err != nil {
		return nil
	}
	return sess
}

// requireSession returns the request's session. Routes behind Ensure or
// RequireRole always have one.
func (h *Handlers) requireSession(r *http.Request) (*session.Data, error) {
	sess := h.sessionFromRequest(r.Context(), r)
	if sess == nil {
		return nil, session.ErrNoSession
	}
	return sess, nil
}

func (h *Handlers) saveSession(ctx context.Context, r *http.Request, sess *session.Data) error {
	if err := h.sessionManager.UpdateSession(ctx, r, sess); err != nil {
		h.loggerFromContext(ctx).Error("failed to update session", "error", err)
		return err
	}
	return nil
}
