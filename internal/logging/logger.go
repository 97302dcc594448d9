package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

type Options struct {
	Level  slog.Level
	Format string
	// File, when set, receives a JSON copy of every record.
	File string
}

// New builds the process logger: colored text or JSON on stdout, optionally
// mirrored to a file. The returned closer releases the file.
func New(stdout io.Writer, opts Options) (*slog.Logger, func() error, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	var console slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		console = slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: opts.Level})
	default:
		console = tint.NewHandler(stdout, &tint.Options{Level: opts.Level})
	}

	path := strings.TrimSpace(opts.File)
	if path == "" {
		return slog.New(MultiHandler(console)), func() error { return nil }, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler := MultiHandler(console, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: opts.Level}))
	return slog.New(handler), file.Close, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
