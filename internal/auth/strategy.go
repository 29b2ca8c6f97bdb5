package auth

import (
	"context"

	"github.com/connecther/connecther/internal/model"
)

// Result is the outcome of a login or register call.
//
// For the local strategy OK means "authenticated" and RedirectURL is
// empty. For the delegated strategy OK means "handoff initiated": the
// browser must be sent to RedirectURL, where the external provider
// collects credentials. Callers must not conflate the two — a delegated
// Result with OK=true says nothing about whether authentication will
// eventually succeed.
type Result struct {
	OK          bool
	RedirectURL string

	// State is the anti-forgery nonce for a delegated handoff. The HTTP
	// layer stores it in a short-lived cookie and checks it on callback.
	// Empty for local results.
	State string
}

// Strategy is the contract both authentication backends implement.
//
// Exactly one strategy is constructed per process, chosen from
// configuration at startup. The active strategy is the sole writer of the
// session store and the sole owner of the persisted profile records.
//
// All operations take a context for storage calls; none of them support
// cancellation of an initiated provider redirect — once the browser is
// handed off, this process is no longer in control.
type Strategy interface {
	// Name identifies the strategy ("local" or "delegated") for logs.
	Name() string

	// Init restores session state at application startup: the local
	// strategy reads the persisted identity record, the delegated
	// strategy starts unauthenticated until the provider callback.
	Init(ctx context.Context) error

	// Login authenticates with the given credentials. The local strategy
	// succeeds iff both fields are non-empty; the delegated strategy
	// ignores password and returns a redirect handoff.
	Login(ctx context.Context, email, password string) (Result, error)

	// Register creates an account. The local strategy requires all three
	// fields non-empty; the delegated strategy returns a redirect handoff
	// carrying a signup hint.
	Register(ctx context.Context, email, password, name string) (Result, error)

	// Logout ends the session. The local strategy clears the session
	// store and the persisted record and returns "". The delegated
	// strategy returns the provider's logout URL; local state is not
	// cleared because the browser navigates away.
	Logout(ctx context.Context) (redirectURL string, err error)

	// UpdateProfile merges the payload into the current identity's
	// persisted record and marks onboarding complete. Without a current
	// identity (or, for the delegated strategy, without a stable storage
	// key) it is a silent no-op.
	UpdateProfile(ctx context.Context, data model.ProfileData) error
}
