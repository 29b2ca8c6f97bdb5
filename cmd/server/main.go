// Package main is the entry point for the ConnectHER server.
//
// main stays minimal: read configuration, create the logger, start the
// application. All actual logic lives in internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/connecther/connecther/internal/config"
	"github.com/connecther/connecther/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		// The session cookie cannot be signed without a secret; refuse to
		// start rather than run with unauthenticated sessions.
		logger.Error("JWT_SECRET is not set — generate one with: openssl rand -hex 32")
		os.Exit(1)
	}

	if cfg.Delegated() {
		logger.Info("delegated auth strategy active",
			slog.String("provider", cfg.ProviderDomain),
		)
	} else {
		logger.Info("local auth strategy active (no provider configured)")
	}

	// Ensure the data directory exists before sqlite opens the file.
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
