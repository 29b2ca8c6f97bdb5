package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/connecther/connecther/internal/auth"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/service"
)

// stateCookieName holds the anti-forgery nonce between the delegated
// handoff and the provider callback.
const stateCookieName = "oauth_state"

// AuthHandler exposes the auth facade over HTTP.
//
// ROUTES:
//   - POST   /api/auth/login     → facade login (or delegated handoff)
//   - POST   /api/auth/register  → facade register
//   - POST   /api/auth/logout    → end session
//   - GET    /api/auth/state     → session snapshot
//   - DELETE /api/auth/error     → clear last auth error
//   - PUT    /api/me/profile     → profile update (guarded route)
//   - GET    /auth/callback      → delegated provider callback only
type AuthHandler struct {
	authService *service.AuthService
	tokens      *auth.TokenService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		logger:      logger,
	}
}

// credentialsRequest is the body of login and register calls.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"` // register only
}

// authResponse reports the outcome of login/register/logout.
//
// For the delegated strategy, OK=true together with a non-empty
// RedirectURL means "handoff initiated" — the client must navigate to the
// provider; nothing has been authenticated yet.
type authResponse struct {
	OK          bool        `json:"ok"`
	RedirectURL string      `json:"redirectUrl,omitempty"`
	User        *model.User `json:"user,omitempty"`
}

// HandleLogin processes POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body",
		})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	h.finishAuth(w, r, result)
}

// HandleRegister processes POST /api/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body",
		})
		return
	}

	result, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	h.finishAuth(w, r, result)
}

// finishAuth turns a strategy Result into the HTTP response.
//
// Local success issues the session cookie. A delegated handoff stores the
// anti-forgery state in a short-lived cookie and returns the provider URL
// for the client to navigate to. Rejected credentials answer 401 with the
// generic message the login form displays.
func (h *AuthHandler) finishAuth(w http.ResponseWriter, r *http.Request, result auth.Result) {
	if !result.OK {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "invalid credentials",
		})
		return
	}

	if result.RedirectURL != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    result.State,
			Path:     "/",
			MaxAge:   600, // 10 minutes: enough to approve at the provider
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, authResponse{
			OK:          true,
			RedirectURL: result.RedirectURL,
		})
		return
	}

	state := h.authService.CurrentState()
	h.issueSessionCookie(w, state.Key)

	writeJSON(w, http.StatusOK, authResponse{
		OK:   true,
		User: state.User,
	})
}

// HandleLogout processes POST /api/auth/logout.
//
// The session cookie is always cleared. For the delegated strategy the
// response carries the provider logout URL the client must follow.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	redirectURL, err := h.authService.Logout(r.Context())
	if err != nil {
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	h.clearSessionCookie(w)

	writeJSON(w, http.StatusOK, authResponse{
		OK:          true,
		RedirectURL: redirectURL,
	})
}

// HandleState processes GET /api/auth/state: the read-only snapshot the
// client uses to know who is signed in.
func (h *AuthHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.authService.CurrentState())
}

// HandleClearError processes DELETE /api/auth/error.
func (h *AuthHandler) HandleClearError(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearAuthError()
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateProfile processes PUT /api/me/profile. The route guard has
// already admitted the request; the update itself always sets the
// onboarding flag.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var data model.ProfileData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body",
		})
		return
	}

	if err := h.authService.UpdateUserProfile(r.Context(), data); err != nil {
		h.logger.Error("profile update failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.authService.CurrentState().User)
}

// HandleCallback processes GET /auth/callback — the delegated provider's
// redirect back to us. Registered only when the delegated strategy is
// active.
//
// FLOW:
//  1. Provider-reported errors (error/error_description query params) are
//     captured into the session and the browser is sent to the login page
//     at a clean URL with the OAuth parameters stripped.
//  2. Otherwise the anti-forgery state must match the handoff cookie.
//  3. The code is exchanged and the merged identity installed, the
//     session cookie issued, and the browser sent to the app root.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	delegated := h.authService.Delegated()
	if delegated == nil {
		http.NotFound(w, r)
		return
	}

	if delegated.ConsumeRedirectError(r.URL.Query()) {
		login := *r.URL
		login.Path = auth.LoginPath
		http.Redirect(w, r, auth.StripOAuthParams(&login), http.StatusSeeOther)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	if err := delegated.HandleCallback(r.Context(), code); err != nil {
		h.logger.Error("auth callback failed", slog.String("error", err.Error()))
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	h.issueSessionCookie(w, h.authService.CurrentState().Key)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// issueSessionCookie signs a session token for the identity key and sets
// the HttpOnly session cookie.
func (h *AuthHandler) issueSessionCookie(w http.ResponseWriter, identityKey string) {
	if identityKey == "" {
		return
	}

	token, err := h.tokens.Generate(identityKey)
	if err != nil {
		h.logger.Error("session token generation failed", slog.String("error", err.Error()))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // behind HTTPS in production
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
