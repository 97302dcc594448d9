package session

import (
	"context"
	"net/http"
)

type contextKey string

const ctxKey contextKey = "session"

// Middleware creates a middleware that adds session data to the request context
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, err := m.GetSession(r.Context(), r); err == nil {
			r = r.WithContext(WithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// Ensure guarantees a session on the request, starting a guest session when needed.
func (m *Manager) Ensure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.EnsureSession(r.Context(), w, r)
		if err != nil {
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole rejects requests whose session does not carry one of roles.
// Missing sessions get 401, wrong roles 403.
func (m *Manager) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			if session == nil {
				loaded, err := m.GetSession(r.Context(), r)
				if err != nil {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				session = loaded
			}
			if !session.Authenticated() {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !session.HasRole(roles...) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// WithSession returns a context carrying session data.
func WithSession(ctx context.Context, data *Data) context.Context {
	return context.WithValue(ctx, ctxKey, data)
}

// GetSessionFromContext retrieves session data from the request context.
func GetSessionFromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	session, ok := ctx.Value(ctxKey).(*Data)
	if !ok {
		return nil
	}
	return session
}
