package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/config"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/realtime"
	"github.com/tablesideapp/tableside/internal/services"
	"github.com/tablesideapp/tableside/internal/session"
)

// ConnectionReporter reports whether an upstream link is currently up.
type ConnectionReporter interface {
	Connected() bool
}

// Pinger checks that a shared store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StateReporter exposes the circuit breaker state of the backend client.
type StateReporter interface {
	State() string
}

// Handlers provides HTTP request handlers for the customer menu, the POS and
// the admin back-office.
type Handlers struct {
	config         *config.Config
	menu           *services.MenuService
	pickers        *services.PickerService
	composers      *services.Composers
	carts          *services.CartService
	drafts         *services.DraftService
	floor          *services.FloorService
	reservations   *services.ReservationService
	adminService   *services.AdminService
	authService    *services.AuthService
	sessionManager *session.Manager
	broadcaster    *realtime.Broadcaster
	realtime       ConnectionReporter
	backend        StateReporter
	cache          Pinger
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	Menu           *services.MenuService
	Pickers        *services.PickerService
	Composers      *services.Composers
	Carts          *services.CartService
	Drafts         *services.DraftService
	Floor          *services.FloorService
	Reservations   *services.ReservationService
	AdminService   *services.AdminService
	AuthService    *services.AuthService
	SessionManager *session.Manager
	Broadcaster    *realtime.Broadcaster
	// Realtime is nil when no NATS_URL is configured.
	Realtime ConnectionReporter
	Backend  StateReporter
	// Cache is reported but never fails the health check; menus fall back
	// to the backend when it is down.
	Cache  Pinger
	Logger *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Menu == nil {
		return nil, fmt.Errorf("handlers dependencies: menu is required")
	}
	if deps.Pickers == nil {
		return nil, fmt.Errorf("handlers dependencies: pickers is required")
	}
	if deps.Composers == nil {
		return nil, fmt.Errorf("handlers dependencies: composers is required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("handlers dependencies: carts is required")
	}
	if deps.Drafts == nil {
		return nil, fmt.Errorf("handlers dependencies: drafts is required")
	}
	if deps.Floor == nil {
		return nil, fmt.Errorf("handlers dependencies: floor is required")
	}
	if deps.Reservations == nil {
		return nil, fmt.Errorf("handlers dependencies: reservations is required")
	}
	if deps.AdminService == nil {
		return nil, fmt.Errorf("handlers dependencies: adminService is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}
	if deps.Broadcaster == nil {
		return nil, fmt.Errorf("handlers dependencies: broadcaster is required")
	}

	return &Handlers{
		config:         deps.Config,
		menu:           deps.Menu,
		pickers:        deps.Pickers,
		composers:      deps.Composers,
		carts:          deps.Carts,
		drafts:         deps.Drafts,
		floor:          deps.Floor,
		reservations:   deps.Reservations,
		adminService:   deps.AdminService,
		authService:    deps.AuthService,
		sessionManager: deps.SessionManager,
		broadcaster:    deps.Broadcaster,
		realtime:       deps.Realtime,
		backend:        deps.Backend,
		cache:          deps.Cache,
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.drafts.Store().Ping(ctx); err != nil {
		logger.Error("draft store health check failed", "error", err)
		http.Error(w, "Draft store unhealthy", http.StatusServiceUnavailable)
		return
	}

	status := map[string]string{
		"status":   "healthy",
		"realtime": "disabled",
	}
	if h.realtime != nil {
		status["realtime"] = "disconnected"
		if h.realtime.Connected() {
			status["realtime"] = "connected"
		}
	}
	if h.backend != nil {
		status["backend"] = h.backend.State()
	}
	if h.cache != nil {
		status["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			logger.Warn("cache health check failed", "error", err)
			status["cache"] = "unreachable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

// SessionMiddleware adds session data to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

// EnsureSession starts a guest session for first-time visitors.
func (h *Handlers) EnsureSession(next http.Handler) http.Handler {
	return h.sessionManager.Ensure(next)
}

func (h *Handlers) RequireStaff(next http.Handler) http.Handler {
	return h.sessionManager.RequireRole(session.RoleEmployee, session.RoleAdmin)(next)
}

func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return h.sessionManager.RequireRole(session.RoleAdmin)(next)
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromRequest(r.Context(), r)
	switch {
	case sess.HasRole(session.RoleAdmin):
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
	case sess.HasRole(session.RoleEmployee):
		http.Redirect(w, r, "/pos/draft", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/menu", http.StatusSeeOther)
	}
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

// callerFor forwards the session's token, or its guest id for anonymous visitors.
func callerFor(sess *session.Data) backend.Caller {
	if sess == nil {
		return backend.Caller{}
	}
	return backend.Caller{Token: sess.AccessToken, GuestID: sess.GuestID}
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
