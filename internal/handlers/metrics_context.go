package handlers

import (
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/tablesideapp/tableside/internal/observability"
)

// MetricsContext installs a request-scoped meter whose attributes tag every
// count a service records, so picker commits can be split by surface and
// role without each service knowing about HTTP.
func (h *Handlers) MetricsContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		attrs := []attribute.Builder{
			attribute.String("http.request_id", requestIDFromRequest(r)),
			attribute.String("http.method", r.Method),
			attribute.String("http.request_class", requestClass(r)),
			attribute.String("app.surface", surfaceFor(r.URL.Path)),
			attribute.String("network.client.ip", clientIP(r)),
		}
		if route := routeLabel(r); route != "" {
			attrs = append(attrs, attribute.String("http.route", route))
		}
		if userAgent := strings.TrimSpace(r.UserAgent()); userAgent != "" {
			attrs = append(attrs, attribute.String("http.user_agent", userAgent))
		}

		if sess := h.sessionFromRequest(ctx, r); sess != nil {
			if role := strings.TrimSpace(sess.Role); role != "" {
				attrs = append(attrs, attribute.String("user.role", role))
			}
			if sess.Authenticated() {
				attrs = append(attrs, attribute.String("user.id", sess.Subject()))
			}
			if sess.DraftOrderID != uuid.Nil {
				attrs = append(attrs, attribute.String("pos.draft_id", sess.DraftOrderID.String()))
			}
		}

		meter := sentry.NewMeter(ctx).WithCtx(ctx)
		meter.SetAttributes(attrs...)

		ctx = observability.WithMeter(ctx, meter)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// surfaceFor names the part of the app a path belongs to.
func surfaceFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/pos"):
		return "pos"
	case strings.HasPrefix(path, "/admin"):
		return "admin"
	case strings.HasPrefix(path, "/auth"):
		return "auth"
	case strings.HasPrefix(path, "/assets"), path == "/health":
		return "system"
	default:
		return "menu"
	}
}
