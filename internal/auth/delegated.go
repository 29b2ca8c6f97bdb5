package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/xid"
	"golang.org/x/oauth2"

	"github.com/connecther/connecther/internal/apperror"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/repository"
	"github.com/connecther/connecther/internal/session"
)

// profileKeyPrefix namespaces the delegated strategy's profile-extension
// records. One record per provider subject id ever seen; records are not
// deleted on logout (orphans are accepted).
const profileKeyPrefix = "connecther:user:"

// defaultAuthErrorMessage is shown when the provider reports a failure
// without a usable error_description.
const defaultAuthErrorMessage = "Authentication failed. Please verify your credentials and try again."

// ProviderConfig identifies the external OIDC provider. Endpoints are
// derived from the domain (Auth0-style layout: /authorize, /oauth/token,
// /userinfo, /v2/logout).
type ProviderConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	BaseURL      string // returnTo target after provider logout
}

// providerClaims is the portion of the /userinfo response we care about.
type providerClaims struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

// Delegated bridges a redirect-based OIDC identity provider into the
// Strategy contract.
//
// Login, register and logout do not complete in-process: they hand the
// browser to the provider and return immediately. The only in-process
// completion point is HandleCallback, which the HTTP layer invokes when
// the provider redirects back with an authorization code.
//
// The externally visible identity is a merge: provider claims as the
// base, overlaid by the locally persisted profile-extension record.
type Delegated struct {
	oauth    *oauth2.Config
	provider ProviderConfig
	profiles repository.ProfileRepository
	sessions *session.Store
	logger   *slog.Logger

	// base holds the provider claims of the current session, kept apart
	// from the merged identity so a replaced extension record can be
	// re-applied to clean claims.
	mu   sync.Mutex
	base *model.User
}

var _ Strategy = (*Delegated)(nil)

// NewDelegated creates the delegated strategy for the given provider.
func NewDelegated(
	provider ProviderConfig,
	profiles repository.ProfileRepository,
	sessions *session.Store,
	logger *slog.Logger,
) *Delegated {
	return &Delegated{
		oauth: &oauth2.Config{
			ClientID:     provider.ClientID,
			ClientSecret: provider.ClientSecret,
			RedirectURL:  provider.CallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  fmt.Sprintf("https://%s/authorize", provider.Domain),
				TokenURL: fmt.Sprintf("https://%s/oauth/token", provider.Domain),
			},
		},
		provider: provider,
		profiles: profiles,
		sessions: sessions,
		logger:   logger,
	}
}

// Name implements Strategy.
func (d *Delegated) Name() string { return "delegated" }

// Init implements Strategy. The delegated session starts unauthenticated;
// identity arrives only through the provider callback.
func (d *Delegated) Init(ctx context.Context) error {
	return nil
}

// Login initiates the provider redirect. The password is ignored —
// credentials are collected by the provider — and OK=true signals
// "handoff initiated", not "authenticated".
func (d *Delegated) Login(ctx context.Context, email, _ string) (Result, error) {
	d.sessions.ClearError()
	return d.handoff(email, false), nil
}

// Register initiates the provider redirect with a signup hint.
func (d *Delegated) Register(ctx context.Context, email, _, _ string) (Result, error) {
	d.sessions.ClearError()
	return d.handoff(email, true), nil
}

// handoff builds the authorization URL and a fresh anti-forgery state.
func (d *Delegated) handoff(email string, signup bool) Result {
	state := xid.New().String()

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if email != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", email))
	}
	if signup {
		opts = append(opts, oauth2.SetAuthURLParam("screen_hint", "signup"))
	}

	return Result{
		OK:          true,
		RedirectURL: d.oauth.AuthCodeURL(state, opts...),
		State:       state,
	}
}

// HandleCallback completes the redirect round trip: exchanges the code,
// fetches the provider claims, loads the profile-extension record for the
// subject, and installs the merged identity.
//
// The loading flag is raised for the duration so the route guard suspends
// decisions instead of redirecting mid-exchange.
func (d *Delegated) HandleCallback(ctx context.Context, code string) error {
	d.sessions.SetLoading(true)
	defer d.sessions.SetLoading(false)

	token, err := d.oauth.Exchange(ctx, code)
	if err != nil {
		d.sessions.SetError(defaultAuthErrorMessage)
		return fmt.Errorf("auth/delegated: exchanging code: %w", err)
	}

	claims, err := d.fetchClaims(ctx, token)
	if err != nil {
		d.sessions.SetError(defaultAuthErrorMessage)
		return err
	}

	base := model.User{
		Email: claims.Email,
		Name:  firstNonEmpty(claims.Name, claims.Nickname, "User"),
	}

	// Subject id is the stable storage key; email is the fallback when
	// the provider omits sub.
	subject := firstNonEmpty(claims.Sub, claims.Email)

	d.mu.Lock()
	d.base = &base
	d.mu.Unlock()

	if err := d.refresh(ctx, subject); err != nil {
		return err
	}

	d.logger.Info("delegated login completed",
		slog.String("subject", subject),
		slog.String("email", claims.Email),
	)

	return nil
}

// fetchClaims calls the provider's /userinfo endpoint with the token.
func (d *Delegated) fetchClaims(ctx context.Context, token *oauth2.Token) (*providerClaims, error) {
	client := d.oauth.Client(ctx, token)

	resp, err := client.Get(fmt.Sprintf("https://%s/userinfo", d.provider.Domain))
	if err != nil {
		return nil, fmt.Errorf("auth/delegated: calling userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth/delegated: userinfo returned status %d", resp.StatusCode)
	}

	var claims providerClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("auth/delegated: decoding userinfo response: %w", err)
	}

	if claims.Sub == "" && claims.Email == "" {
		return nil, fmt.Errorf("auth/delegated: userinfo response has no subject or email")
	}

	return &claims, nil
}

// refresh reloads the profile-extension record for subject and installs
// the merged identity. An empty subject clears the session.
func (d *Delegated) refresh(ctx context.Context, subject string) error {
	if subject == "" {
		d.sessions.Clear()
		return nil
	}

	d.mu.Lock()
	if d.base == nil {
		d.mu.Unlock()
		d.sessions.Clear()
		return nil
	}
	merged := *d.base
	d.mu.Unlock()

	ext, err := d.loadExtension(ctx, subject)
	if err != nil {
		return err
	}
	ext.Merge(&merged)

	d.sessions.SetIdentity(subject, &merged)
	return nil
}

// loadExtension reads the persisted profile-extension record for subject.
// A missing record is an empty extension, not an error.
func (d *Delegated) loadExtension(ctx context.Context, subject string) (model.ProfileExtension, error) {
	var ext model.ProfileExtension

	raw, err := d.profiles.Get(ctx, profileKeyPrefix+subject)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return ext, nil
		}
		return ext, fmt.Errorf("auth/delegated: reading profile record: %w", err)
	}

	if err := json.Unmarshal(raw, &ext); err != nil {
		return model.ProfileExtension{}, fmt.Errorf("auth/delegated: decoding profile record: %w", err)
	}

	return ext, nil
}

// ConsumeRedirectError inspects callback query parameters for a provider
// failure. If present, the error is captured into the session as a single
// human-readable message and true is returned; the HTTP layer then strips
// the OAuth parameters from the visible URL so the error surfaces once.
func (d *Delegated) ConsumeRedirectError(q url.Values) bool {
	errCode := q.Get("error")
	errDescription := q.Get("error_description")

	if errCode == "" && errDescription == "" {
		return false
	}

	msg := errDescription
	if msg == "" {
		msg = defaultAuthErrorMessage
	}
	d.sessions.SetError(msg)

	d.logger.Warn("delegated login failed",
		slog.String("error", errCode),
		slog.String("description", errDescription),
	)

	return true
}

// StripOAuthParams removes the OAuth round-trip parameters from a URL so
// the browser can be redirected to a clean address after the error (or
// code) has been consumed.
func StripOAuthParams(u *url.URL) string {
	q := u.Query()
	q.Del("error")
	q.Del("error_description")
	q.Del("state")
	q.Del("code")

	clean := *u
	clean.RawQuery = q.Encode()
	return clean.String()
}

// Logout returns the provider's logout URL with the configured return
// target. Session state is not explicitly cleared: the redirect navigates
// the browser away, which is what ends the visible session.
func (d *Delegated) Logout(ctx context.Context) (string, error) {
	logoutURL := url.URL{
		Scheme: "https",
		Host:   d.provider.Domain,
		Path:   "/v2/logout",
	}

	q := logoutURL.Query()
	q.Set("client_id", d.provider.ClientID)
	q.Set("returnTo", d.provider.BaseURL)
	logoutURL.RawQuery = q.Encode()

	return logoutURL.String(), nil
}

// UpdateProfile writes a fresh profile-extension record for the current
// subject (fully replacing the previous one) and re-merges it over the
// provider claims. Without a stable storage key it is a silent no-op.
func (d *Delegated) UpdateProfile(ctx context.Context, data model.ProfileData) error {
	subject := d.sessions.Snapshot().Key
	if subject == "" {
		return nil
	}

	ext := model.NewProfileExtension(data)
	raw, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("auth/delegated: encoding profile record: %w", err)
	}

	if err := d.profiles.Put(ctx, profileKeyPrefix+subject, raw); err != nil {
		return fmt.Errorf("auth/delegated: persisting profile record: %w", err)
	}

	if err := d.refresh(ctx, subject); err != nil {
		return err
	}

	d.logger.Info("profile updated", slog.String("subject", subject))
	return nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
