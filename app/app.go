package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"

	"github.com/tablesideapp/tableside/internal/auth"
	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/cache"
	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/internal/config"
	"github.com/tablesideapp/tableside/internal/crypto"
	"github.com/tablesideapp/tableside/internal/db"
	"github.com/tablesideapp/tableside/internal/handlers"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/realtime"
	"github.com/tablesideapp/tableside/internal/services"
	"github.com/tablesideapp/tableside/internal/session"
	"github.com/tablesideapp/tableside/internal/tracking"
)

const (
	catalogCacheSize  = 64
	realtimeWorkers   = 4
	natsConnTimeout   = 10 * time.Second
	sentryFlushWindow = 2 * time.Second
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Backend        *backend.Client
	Menu           *services.MenuService
	Tracker        *tracking.Tracker
	Broadcaster    *realtime.Broadcaster
	NATS           *nats.Conn
	Subscriber     *realtime.Subscriber
	Handlers       *handlers.Handlers

	closeLog     func() error
	sentry       bool
	stopRealtime context.CancelFunc
	realtimeDone chan struct{}
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(os.Stdout, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	a, err := Build(startupCtx, cfg, logger)
	if err != nil {
		_ = closeLog() //nolint
		return nil, err
	}
	a.closeLog = closeLog
	return a, nil
}

// Build wires every component for cfg. On error everything opened so far is
// closed again.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	if logger == nil {
		logger = logging.Discard()
	}
	a := &App{Config: cfg, Logger: logger, Broadcaster: realtime.NewBroadcaster()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		a.sentry = true
	}

	a.CacheProvider, err = cache.NewProvider(ctx, cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		MemorySize:            catalogCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	tokenSealer, err := crypto.NewSealerFromSecret(cfg.AuthTokenSecret, "session")
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}

	sessionStore, err := session.NewStore(ctx, session.Config{
		Provider:              cfg.SessionStoreProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		MemoryLimit:           cfg.SessionMemoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	a.SessionManager = session.NewManager(
		sessionStore,
		handlers.SecureCookiesFromConfig(cfg),
		session.WithTokenSealer(tokenSealer),
	)

	a.Backend, err = backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend client: %w", err)
	}

	var source catalog.Source = a.Backend
	if cfg.CatalogSource == "file" {
		source = catalog.NewFileSource(cfg.MenuFile)
	}
	a.Menu = services.NewMenuService(source, a.CacheProvider, cfg.CatalogTTL, a.Backend, logger)
	a.Tracker = tracking.NewTracker(a.Backend, logger, cfg.TrackingTimeout)

	drafts, err := a.draftStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.connectRealtime(); err != nil {
		return nil, err
	}

	draftService := services.NewDraftService(drafts, a.Backend, logger)
	deps := handlers.Dependencies{
		Config:         cfg,
		Menu:           a.Menu,
		Pickers:        services.NewPickerService(a.Menu, logger),
		Composers:      services.NewComposers(a.Backend, a.Tracker, drafts),
		Carts:          services.NewCartService(a.Backend, logger),
		Drafts:         draftService,
		Floor:          services.NewFloorService(a.Backend, logger),
		Reservations:   services.NewReservationService(a.Backend, logger),
		AdminService:   services.NewAdminService(a.Backend, a.Menu, logger),
		AuthService:    services.NewAuthService(auth.NewVerifier(cfg.AuthTokenSecret), logger),
		SessionManager: a.SessionManager,
		Broadcaster:    a.Broadcaster,
		Backend:        a.Backend,
		Cache:          a.CacheProvider,
		Logger:         logger,
	}
	if a.Subscriber != nil {
		deps.Realtime = a.Subscriber
	}
	a.Handlers, err = handlers.New(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return a, nil
}

func (a *App) draftStore(ctx context.Context) (services.DraftStore, error) {
	if a.Config.DraftStore != "postgres" {
		return db.NewMemoryDraftStore(), nil
	}

	if err := db.Migrate(a.Config.DatabaseURL); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, a.Config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.DB = pool
	return db.NewDraftStore(pool), nil
}

// connectRealtime routes backend events: product changes invalidate the
// catalog cache and every event is relayed to connected POS screens.
func (a *App) connectRealtime() error {
	if !a.Config.RealtimeEnabled() {
		a.Logger.Info("realtime disabled, catalog refreshes on cache expiry only")
		return nil
	}

	conn, err := realtime.Connect(a.Config.NATSURL, natsConnTimeout, a.Logger)
	if err != nil {
		return err
	}
	a.NATS = conn

	router := realtime.NewRouter(a.Logger)
	for _, subject := range realtime.Subjects {
		if realtime.IsProductSubject(subject) {
			router.Handle(subject, func(ctx context.Context, _ realtime.Event) error {
				return a.Menu.Invalidate(ctx)
			})
		}
	}
	router.HandleAll(a.Broadcaster.Handler())

	a.Subscriber = realtime.NewSubscriber(conn, router, realtimeWorkers, a.Logger)
	return nil
}

// Start runs background workers until Close.
func (a *App) Start() {
	if a.Subscriber == nil || a.realtimeDone != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopRealtime = cancel
	a.realtimeDone = make(chan struct{})
	go func() {
		defer close(a.realtimeDone)
		if err := a.Subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error("realtime subscriber stopped", "error", err)
		}
	}()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.stopRealtime != nil {
		a.stopRealtime()
		<-a.realtimeDone
	}
	if a.NATS != nil {
		a.NATS.Close()
	}
	if a.Tracker != nil {
		a.Tracker.Wait()
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.sentry {
		sentry.Flush(sentryFlushWindow)
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
