package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tablesideapp/tableside/internal/config"
	"github.com/tablesideapp/tableside/internal/handlers"
	uiassets "github.com/tablesideapp/tableside/ui/assets"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// The POS event stream clears its own write deadline.
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Router builds the route table. Customer routes run on a guest session when
// nobody signed in; /pos and /admin need a staff token.
func (s *Server) Router() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.MetricsContext)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/", h.Root).Methods("GET").Name("root")
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	// Static assets - must be before the customer router
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(uiassets.FS)))).Name("assets")

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.Use(h.SessionMiddleware)
	authRouter.Use(h.RequireSameOrigin)
	authRouter.Use(h.RateLimitMutations)
	authRouter.HandleFunc("/session", h.SignIn).Methods("POST").Name("auth.session")
	authRouter.HandleFunc("/logout", h.Logout).Methods("POST").Name("auth.logout")

	posRouter := r.PathPrefix("/pos").Subrouter()
	posRouter.Use(h.SessionMiddleware)
	posRouter.Use(h.RequireStaff)
	posRouter.Use(h.RequireSameOrigin)
	posRouter.Use(h.RateLimitMutations)
	posRouter.HandleFunc("/menu", h.POSMenu).Methods("GET").Name("pos.menu")
	posRouter.HandleFunc("/products/{id}/tap", h.POSTap).Methods("POST").Name("pos.products.tap")
	registerPicker(posRouter, "/picker", "pos.picker", h.POSPickerRoutes())
	posRouter.HandleFunc("/draft", h.Draft).Methods("GET").Name("pos.draft")
	posRouter.HandleFunc("/draft/lines/{variantId}", h.RemoveDraftLine).Methods("DELETE").Name("pos.draft.lines.remove")
	posRouter.HandleFunc("/draft/submit", h.SubmitDraft).Methods("POST").Name("pos.draft.submit")
	posRouter.HandleFunc("/orders", h.Orders).Methods("GET").Name("pos.orders")
	posRouter.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods("POST").Name("pos.orders.status")
	posRouter.HandleFunc("/tables", h.Tables).Methods("GET").Name("pos.tables")
	posRouter.HandleFunc("/tables/{id}/status", h.UpdateTableStatus).Methods("POST").Name("pos.tables.status")
	posRouter.HandleFunc("/events", h.Events).Methods("GET").Name("pos.events")

	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(h.SessionMiddleware)
	adminRouter.Use(h.RequireAdmin)
	adminRouter.Use(h.RequireSameOrigin)
	adminRouter.Use(h.RateLimitMutations)
	adminRouter.HandleFunc("/products", h.AdminProducts).Methods("GET").Name("admin.products")
	adminRouter.HandleFunc("/products/{id}/status", h.SetProductStatus).Methods("POST").Name("admin.products.status")

	customerRouter := r.NewRoute().Subrouter()
	customerRouter.Use(h.EnsureSession)
	customerRouter.Use(h.RequireSameOrigin)
	customerRouter.Use(h.RateLimitMutations)
	customerRouter.HandleFunc("/menu", h.Menu).Methods("GET").Name("menu")
	customerRouter.HandleFunc("/menu/products/{id}", h.Product).Methods("GET").Name("menu.product")
	registerPicker(customerRouter, "/menu/picker", "menu.picker", h.MenuPickerRoutes())
	customerRouter.HandleFunc("/recommendations", h.Recommendations).Methods("GET").Name("recommendations")
	customerRouter.HandleFunc("/cart", h.Cart).Methods("GET").Name("cart")
	customerRouter.HandleFunc("/cart/items/{variantId}", h.RemoveCartItem).Methods("DELETE").Name("cart.items.remove")
	customerRouter.HandleFunc("/checkout", h.Checkout).Methods("POST").Name("checkout")
	customerRouter.HandleFunc("/reservations", h.CreateReservation).Methods("POST").Name("reservations.create")

	return r
}

func registerPicker(r *mux.Router, prefix, name string, routes handlers.PickerRoutes) {
	r.HandleFunc(prefix, routes.View).Methods("GET").Name(name)
	r.HandleFunc(prefix+"/open", routes.Open).Methods("POST").Name(name + ".open")
	r.HandleFunc(prefix+"/toggle", routes.Toggle).Methods("POST").Name(name + ".toggle")
	r.HandleFunc(prefix+"/quantity", routes.Quantity).Methods("POST").Name(name + ".quantity")
	r.HandleFunc(prefix+"/close", routes.Close).Methods("POST").Name(name + ".close")
	r.HandleFunc(prefix+"/commit", routes.Commit).Methods("POST").Name(name + ".commit")
}
