// Command server runs the Tableside web tier: the customer menu, the POS
// and the admin back-office.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tablesideapp/tableside/app"
	"github.com/tablesideapp/tableside/server"
)

// shutdownGrace leaves open POS event streams time to drain.
const shutdownGrace = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	fallbackLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	application, err := app.New()
	if err != nil {
		fallbackLogger.Error("failed to initialize app", "error", err)
		return 1
	}
	defer application.Close()

	srv, err := server.New(application.Config, application.Logger, application.Handlers)
	if err != nil {
		application.Logger.Error("failed to initialize server", "error", err)
		return 1
	}

	application.Start()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			application.Logger.Error("server failed", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		application.Logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Close(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			application.Logger.Warn("server shutdown timed out", "grace", shutdownGrace)
		} else {
			application.Logger.Error("server forced to shutdown", "error", err)
		}
		return 1
	}
	return 0
}
