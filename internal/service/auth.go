// Package service holds the business-logic layer between the HTTP
// handlers and the auth/repository packages.
package service

import (
	"context"
	"log/slog"

	"github.com/connecther/connecther/internal/auth"
	"github.com/connecther/connecther/internal/config"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/repository"
	"github.com/connecther/connecther/internal/session"
)

// AuthService is the auth facade: one stable contract for the rest of the
// application, regardless of which strategy backs it.
//
// The strategy is chosen exactly once, at construction, from the presence
// of the provider configuration. There is no runtime switching — the
// facade holds the same strategy for the lifetime of the process.
type AuthService struct {
	strategy auth.Strategy
	sessions *session.Store
	logger   *slog.Logger
}

// NewAuthService builds the facade and selects the strategy: delegated
// when the provider domain and client id are both configured, local
// otherwise.
func NewAuthService(
	cfg *config.Config,
	profiles repository.ProfileRepository,
	sessions *session.Store,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	var strategy auth.Strategy
	if cfg.Delegated() {
		strategy = auth.NewDelegated(auth.ProviderConfig{
			Domain:       cfg.ProviderDomain,
			ClientID:     cfg.ProviderClientID,
			ClientSecret: cfg.ProviderClientSecret,
			CallbackURL:  cfg.ProviderCallbackURL,
			BaseURL:      cfg.BaseURL,
		}, profiles, sessions, logger)
	} else {
		strategy = auth.NewLocal(profiles, sessions, passwords, logger)
	}

	logger.Info("auth strategy selected", slog.String("strategy", strategy.Name()))

	return &AuthService{
		strategy: strategy,
		sessions: sessions,
		logger:   logger,
	}
}

// StrategyName identifies the active strategy for logs and diagnostics.
func (s *AuthService) StrategyName() string {
	return s.strategy.Name()
}

// Delegated returns the delegated strategy when it is the active one, or
// nil. The HTTP layer uses it to register the provider callback route
// only when there is a provider to call back.
func (s *AuthService) Delegated() *auth.Delegated {
	d, _ := s.strategy.(*auth.Delegated)
	return d
}

// Init restores session state at startup (persisted record for the local
// strategy; nothing for the delegated one).
func (s *AuthService) Init(ctx context.Context) error {
	return s.strategy.Init(ctx)
}

// Login delegates to the active strategy. For the delegated strategy the
// returned Result describes a redirect handoff, not a completed login.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.Result, error) {
	return s.strategy.Login(ctx, email, password)
}

// Register delegates to the active strategy.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (auth.Result, error) {
	return s.strategy.Register(ctx, email, password, name)
}

// Logout ends the session. A non-empty redirect URL (delegated strategy)
// must be followed by the browser to complete the provider logout.
func (s *AuthService) Logout(ctx context.Context) (string, error) {
	return s.strategy.Logout(ctx)
}

// UpdateUserProfile merges the payload into the current identity and
// always marks onboarding complete.
//
// Without a current identity this is a silent no-op by contract (the
// original behaves the same way); it is logged at Warn so the condition
// is at least observable.
func (s *AuthService) UpdateUserProfile(ctx context.Context, data model.ProfileData) error {
	if !s.sessions.Snapshot().IsAuthenticated {
		s.logger.Warn("profile update ignored: no authenticated identity")
	}
	return s.strategy.UpdateProfile(ctx, data)
}

// CurrentState returns a read-only snapshot of the session.
func (s *AuthService) CurrentState() session.State {
	return s.sessions.Snapshot()
}

// ClearAuthError resets the last authentication error to absent.
func (s *AuthService) ClearAuthError() {
	s.sessions.ClearError()
}
