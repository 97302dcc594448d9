package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/session"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer for
// flushing and deadlines.
func (w *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Request classes decide log level and whether latency is recorded.
const (
	classAsset    = "asset"
	classHealth   = "health"
	classStream   = "stream"
	classFragment = "fragment"
	classPage     = "page"
)

func requestClass(r *http.Request) string {
	switch {
	case strings.HasPrefix(r.URL.Path, "/assets/"):
		return classAsset
	case r.URL.Path == "/health":
		return classHealth
	case strings.Contains(r.Header.Get("Accept"), "text/event-stream"), strings.HasSuffix(r.URL.Path, "/events"):
		return classStream
	case isHTMX(r):
		return classFragment
	default:
		return classPage
	}
}

// RequestLogger logs all incoming requests and injects a request-scoped logger into context.
func (h *Handlers) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := routeLabel(r)
		class := requestClass(r)

		requestID := requestIDFromRequest(r)
		w.Header().Set("X-Request-ID", requestID)
		// Later middleware reads the id back from the request.
		r.Header.Set("X-Request-ID", requestID)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_ip", clientIP(r),
			"class", class,
		}
		if route != "" {
			attrs = append(attrs, "route", route)
		}
		if userAgent := strings.TrimSpace(r.UserAgent()); userAgent != "" {
			attrs = append(attrs, "user_agent", userAgent)
		}
		if target := strings.TrimSpace(r.Header.Get("HX-Target")); target != "" {
			attrs = append(attrs, "hx_target", target)
		}
		if r.ContentLength > 0 {
			attrs = append(attrs, "content_length", r.ContentLength)
		}
		if sess := h.sessionFromRequest(r.Context(), r); sess != nil {
			attrs = append(attrs, "session_role", sess.Role)
			if sess.HasRole(session.RoleEmployee, session.RoleAdmin) {
				attrs = append(attrs, "staff_id", sess.Subject())
			}
		}
		logger := h.logger.With(attrs...)

		ctx := logging.WithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		wrapped := &loggingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(wrapped, r)

		status := wrapped.status
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		metricRoute := route
		if metricRoute == "" {
			metricRoute = "unknown"
		}
		metricAttrs := []attribute.Builder{
			attribute.String("http.method", r.Method),
			attribute.String("http.route", metricRoute),
			attribute.Int("http.status_code", status),
		}
		meter := sentry.NewMeter(ctx).WithCtx(ctx)
		meter.Count("http.server.requests", 1, sentry.WithAttributes(metricAttrs...))
		// A stream's lifetime says nothing about server latency.
		if class != classStream {
			meter.Distribution(
				"http.server.duration",
				float64(elapsed.Milliseconds()),
				sentry.WithUnit(sentry.UnitMillisecond),
				sentry.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", metricRoute),
					attribute.String("http.status_class", fmt.Sprintf("%dxx", status/100)),
				),
			)
		}
		if status >= http.StatusInternalServerError {
			meter.Count("http.server.errors", 1, sentry.WithAttributes(metricAttrs...))
		}

		result := []any{
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"bytes", wrapped.bytes,
		}
		switch class {
		case classAsset, classHealth:
			logger.Debug("request completed", result...)
		case classStream:
			logger.Info("event stream closed", result...)
		default:
			logger.Info("request completed", result...)
		}
	})
}

const maxRequestIDLength = 64

// requestIDFromRequest trusts an inbound X-Request-ID only when it is short
// and made of safe characters, since it ends up in every log line.
func requestIDFromRequest(r *http.Request) string {
	if r == nil {
		return newRequestID()
	}
	if requestID := strings.TrimSpace(r.Header.Get("X-Request-ID")); validRequestID(requestID) {
		return requestID
	}
	return newRequestID()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func newRequestID() string {
	return uuid.NewString()
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func routeLabel(r *http.Request) string {
	if r == nil {
		return ""
	}
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	if name := route.GetName(); name != "" {
		return name
	}
	if template, err := route.GetPathTemplate(); err == nil && template != "" {
		return template
	}
	return ""
}
