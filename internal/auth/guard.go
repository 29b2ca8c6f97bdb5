package auth

import (
	"context"
	"net/http"

	"github.com/connecther/connecther/internal/session"
)

// Navigation targets the guard redirects to.
const (
	LoginPath      = "/login"
	OnboardingPath = "/onboarding"
)

// SessionCookieName is the HttpOnly cookie carrying the session token.
const SessionCookieName = "connecther_session"

// Decision is the route guard's verdict for a navigation.
type Decision int

const (
	// DecisionAllow renders the requested route.
	DecisionAllow Decision = iota
	// DecisionSuspend renders nothing: auth state is still loading, so
	// neither allowing nor redirecting would be correct yet.
	DecisionSuspend
	// DecisionRedirectLogin sends the visitor to the login entry point.
	DecisionRedirectLogin
	// DecisionRedirectOnboarding sends an authenticated but not yet
	// onboarded user to the onboarding entry point.
	DecisionRedirectOnboarding
)

// Decide is the pure route-guard decision over the current session state
// and the route's declared requirement. Checked in order:
//
//  1. loading           → suspend (no redirect yet)
//  2. unauthenticated   → login
//  3. onboarding needed → onboarding
//  4. otherwise         → allow
func Decide(state session.State, requireOnboarding bool) Decision {
	if state.IsAuthLoading {
		return DecisionSuspend
	}
	if !state.IsAuthenticated {
		return DecisionRedirectLogin
	}
	if requireOnboarding && !state.HasCompletedOnboarding {
		return DecisionRedirectOnboarding
	}
	return DecisionAllow
}

// contextKey is a package-private context key type, so only this package
// can read or write identity values in a request context.
type contextKey string

const identityKeyContextKey contextKey = "identityKey"

// IdentityKeyFromContext returns the identity key the guard attached to
// an allowed request. ("", false) means the request did not pass a guard.
func IdentityKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(identityKeyContextKey).(string)
	return key, ok && key != ""
}

// Guard returns middleware protecting a route group.
//
// The decision is taken from the session store's snapshot via Decide. On
// Allow, the session cookie must additionally corroborate the stored
// identity — a request without a valid token for the current identity key
// is treated as unauthenticated. Redirects use 303 See Other, the HTTP
// counterpart of a history-replacing client navigation; Suspend answers
// 204 No Content, rendering nothing.
func Guard(sessions *session.Store, tokens *TokenService, requireOnboarding bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := sessions.Snapshot()

			decision := Decide(state, requireOnboarding)
			if decision == DecisionAllow && !cookieMatches(r, tokens, state.Key) {
				decision = DecisionRedirectLogin
			}

			switch decision {
			case DecisionSuspend:
				w.WriteHeader(http.StatusNoContent)
			case DecisionRedirectLogin:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			case DecisionRedirectOnboarding:
				http.Redirect(w, r, OnboardingPath, http.StatusSeeOther)
			case DecisionAllow:
				ctx := context.WithValue(r.Context(), identityKeyContextKey, state.Key)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// cookieMatches reports whether the request carries a valid session token
// for the given identity key.
func cookieMatches(r *http.Request, tokens *TokenService, identityKey string) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	subject, err := tokens.Validate(cookie.Value)
	if err != nil {
		return false
	}

	return subject == identityKey
}
