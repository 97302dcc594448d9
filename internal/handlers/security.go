package handlers

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/tablesideapp/tableside/internal/config"
	"github.com/tablesideapp/tableside/internal/observability"
)

// contentSecurityPolicy keeps scripts and styles first-party. Product images
// may come from the backend's CDN.
const contentSecurityPolicy = "default-src 'self'; img-src 'self' https: data:; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'"

const (
	permissionsPolicy       = "camera=(), microphone=(), geolocation=(), payment=()"
	strictTransportSecurity = "max-age=63072000; includeSubDomains"
)

// SecurityHeaders sets baseline security headers for all responses.
func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	hsts := SecureCookiesFromConfig(h.config)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		headers.Set("Cross-Origin-Opener-Policy", "same-origin")
		headers.Set("Cross-Origin-Resource-Policy", "same-origin")
		headers.Set("Content-Security-Policy", contentSecurityPolicy)
		headers.Set("Permissions-Policy", permissionsPolicy)
		if hsts {
			headers.Set("Strict-Transport-Security", strictTransportSecurity)
		}

		next.ServeHTTP(w, r)
	})
}

// originVerdict explains why a state-changing request was refused. The zero
// value means it may proceed.
type originVerdict struct {
	reason string
	header string
	value  string
	err    error
}

func (v originVerdict) allowed() bool { return v.reason == "" }

// RequireSameOrigin blocks cross-origin state-changing requests. Carts,
// drafts and order statuses all change through plain form posts, so this
// is the CSRF defense.
func (h *Handlers) RequireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requestMutatesState(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		meter := observability.MeterFromContext(r.Context())
		meter.SetAttributes(attribute.String("component", "security.same_origin"))
		meter.Count("security.same_origin.checked", 1)

		verdict := h.checkOrigin(r)
		if verdict.allowed() {
			next.ServeHTTP(w, r)
			return
		}

		meter.Count("security.same_origin.blocked", 1, sentry.WithAttributes(attribute.String("reason", verdict.reason)))
		logger := h.loggerFromContext(r.Context())
		if verdict.header == "" {
			logger.Warn("blocked state-changing request without origin/referrer", "method", r.Method, "path", r.URL.Path)
		} else {
			logger.Warn("blocked cross-origin state-changing request",
				"method", r.Method,
				"path", r.URL.Path,
				strings.ToLower(verdict.header), verdict.value,
				"error", verdict.err,
			)
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
}

func (h *Handlers) checkOrigin(r *http.Request) originVerdict {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	referer := strings.TrimSpace(r.Header.Get("Referer"))

	if origin == "" && referer == "" {
		// Browsers that strip both still send fetch metadata.
		if r.Header.Get("Sec-Fetch-Site") == "same-origin" {
			return originVerdict{}
		}
		return originVerdict{reason: "missing_origin_and_referer"}
	}

	allowed := allowedRequestHosts(h.config, r)
	for _, candidate := range []struct{ header, value, reason string }{
		{"Origin", origin, "invalid_origin"},
		{"Referer", referer, "invalid_referer"},
	} {
		if candidate.value == "" {
			continue
		}
		if ok, err := headerMatchesHost(candidate.value, allowed); err != nil || !ok {
			return originVerdict{reason: candidate.reason, header: candidate.header, value: candidate.value, err: err}
		}
	}
	return originVerdict{}
}

func requestMutatesState(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func headerMatchesHost(value string, allowed map[string]struct{}) (bool, error) {
	parsed, err := url.Parse(value)
	if err != nil {
		return false, fmt.Errorf("failed to parse URL: %w", err)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false, fmt.Errorf("missing hostname")
	}
	_, ok := allowed[host]
	return ok, nil
}

// allowedRequestHosts is the request's own host, BASE_URL's host and every
// TRUSTED_ORIGINS host.
func allowedRequestHosts(cfg *config.Config, r *http.Request) map[string]struct{} {
	hosts := map[string]struct{}{}
	add := func(host string) {
		if host != "" {
			hosts[host] = struct{}{}
		}
	}

	if r != nil {
		add(normalizeHost(r.Host))
	}
	if cfg != nil {
		add(hostFromURL(cfg.BaseURL))
		for _, origin := range cfg.TrustedOrigins {
			add(hostFromURL(origin))
		}
	}
	return hosts
}

func normalizeHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(strings.TrimSpace(host))
	}
	return strings.ToLower(hostport)
}

func hostFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
