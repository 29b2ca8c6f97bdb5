// Package server wires handlers, middleware and routes together and owns
// the HTTP server lifecycle.
//
// DEPENDENCY FLOW:
//
//	main.go → config.Load → server.New
//	server.New → sqlite.DB → session.Store → AuthService (strategy chosen
//	here, once) → handlers → routes
//
// This is the composition root: every dependency is assembled in one
// place rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/connecther/connecther/internal/auth"
	"github.com/connecther/connecther/internal/config"
	"github.com/connecther/connecther/internal/handler"
	"github.com/connecther/connecther/internal/middleware"
	sqliteRepo "github.com/connecther/connecther/internal/repository/sqlite"
	"github.com/connecther/connecther/internal/service"
	"github.com/connecther/connecther/internal/session"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph and registers all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes builds the services and maps them onto the route table.
//
// ROUTE TABLE:
//
//	POST   /api/auth/login        login (local) or provider handoff
//	POST   /api/auth/register     register (local) or provider handoff
//	POST   /api/auth/logout       end session
//	GET    /api/auth/state        session snapshot
//	DELETE /api/auth/error        clear last auth error
//	GET    /auth/callback         provider callback (delegated only)
//	GET    /api/doctors           directory with filters
//	PUT    /api/me/profile        profile update          (guarded)
//	GET    /your-profile          dashboard shell         (guarded)
//	GET    /name-setup            name setup shell        (guarded)
//	GET    /onboarding            onboarding shell        (guarded)
//	GET    /, /login, /register, /find-a-provider, /symptom-checker
//	                              public shells (not guarded)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	sessions := session.NewStore()
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.config, s.db, sessions, passwords, s.logger)

	// Restore the persisted session (local strategy reads its record
	// back; delegated starts unauthenticated until the callback).
	initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := authService.Init(initCtx); err != nil {
		return fmt.Errorf("restoring session state: %w", err)
	}

	doctorService := service.NewDoctorService(s.db, s.logger)
	if err := s.db.SeedDoctors(initCtx, service.DefaultDoctors()); err != nil {
		return fmt.Errorf("seeding doctor directory: %w", err)
	}

	authHandler := handler.NewAuthHandler(authService, tokens, s.logger)
	doctorHandler := handler.NewDoctorHandler(doctorService, s.logger)
	pagesHandler := handler.NewPagesHandler()

	// === Auth API ===
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/state", authHandler.HandleState)
		r.Delete("/error", authHandler.HandleClearError)
	})

	// Provider callback exists only when a provider is configured.
	if authService.Delegated() != nil {
		s.router.Get("/auth/callback", authHandler.HandleCallback)
	}

	// === Directory API ===
	s.router.Get("/api/doctors", doctorHandler.HandleList)

	// === Guarded routes ===
	// The original route table guards these with requireOnboarding=false:
	// they must be reachable before onboarding completes (onboarding
	// itself lives here).
	s.router.Group(func(r chi.Router) {
		r.Use(auth.Guard(sessions, tokens, false))
		r.Put("/api/me/profile", authHandler.HandleUpdateProfile)
		r.Get("/your-profile", pagesHandler.HandlePage)
		r.Get("/name-setup", pagesHandler.HandlePage)
		r.Get("/onboarding", pagesHandler.HandlePage)
	})

	// === Public shells ===
	s.router.Get("/", pagesHandler.HandlePage)
	s.router.Get("/login", pagesHandler.HandlePage)
	s.router.Get("/register", pagesHandler.HandlePage)
	s.router.Get("/find-a-provider", pagesHandler.HandlePage)
	s.router.Get("/symptom-checker", pagesHandler.HandlePage)

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.BaseURL),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
