// Package session holds the current authentication session state.
//
// There is exactly one Store per running application, owned by whichever
// auth strategy is active — the strategy is the only writer. Readers (the
// route guard, HTTP handlers) take immutable snapshots. The mutex exists
// because HTTP requests are served concurrently, not because there are
// competing writers.
package session

import (
	"sync"

	"github.com/connecther/connecther/internal/model"
)

// State is the facade-visible view of the session at one instant.
//
// HasCompletedOnboarding is always derived from the identity's own flag;
// it is never stored separately and cannot be set independently of it.
type State struct {
	User                   *model.User `json:"user"`
	IsAuthenticated        bool        `json:"isAuthenticated"`
	HasCompletedOnboarding bool        `json:"hasCompletedOnboarding"`
	IsAuthLoading          bool        `json:"isAuthLoading"`
	AuthError              string      `json:"authError,omitempty"`

	// Key is the stable identity key of the current user (email for the
	// local strategy, provider subject id for the delegated one). Empty
	// when unauthenticated. Internal to the auth layer, not serialized.
	Key string `json:"-"`
}

// Store is the single owned container for session state.
type Store struct {
	mu      sync.RWMutex
	key     string
	user    *model.User
	loading bool
	authErr string
}

// NewStore returns an empty, unauthenticated store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current state. The returned User is a
// copy, so callers can't mutate the store through it.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		IsAuthenticated: s.user != nil,
		IsAuthLoading:   s.loading,
		AuthError:       s.authErr,
		Key:             s.key,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
		st.HasCompletedOnboarding = u.HasCompletedOnboarding
	}
	return st
}

// SetIdentity installs the authenticated identity and its stable key.
// The store keeps its own copy of the user.
func (s *Store) SetIdentity(key string, user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		s.key = ""
		s.user = nil
		return
	}
	u := *user
	s.key = key
	s.user = &u
}

// Clear removes the identity, returning the session to unauthenticated.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	s.user = nil
}

// SetLoading flips the authentication-in-progress flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records the last authentication error message.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authErr = msg
}

// ClearError resets the last authentication error to absent.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authErr = ""
}
