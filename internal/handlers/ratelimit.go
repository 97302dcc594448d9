package handlers

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/go-chi/httprate"

	"github.com/tablesideapp/tableside/internal/observability"
)

// RateLimitMutations caps state-changing requests per client IP per minute.
// Reads are never limited.
func (h *Handlers) RateLimitMutations(next http.Handler) http.Handler {
	perMinute := 0
	if h.config != nil {
		perMinute = h.config.MutationRateLimit
	}
	if perMinute <= 0 {
		return next
	}

	limited := httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			observability.MeterFromContext(r.Context()).Count("security.rate_limited", 1,
				sentry.WithAttributes(attribute.String("http.method", r.Method)))
			h.loggerFromContext(r.Context()).Warn("rate limited state-changing request", "path", r.URL.Path)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
		}),
	)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requestMutatesState(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}
