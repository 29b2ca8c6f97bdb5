package handler

import (
	"net/http"

	"github.com/connecther/connecther/internal/auth"
)

// siteName is used for browser titles: "<page> | ConnectHER", or just the
// site name for unknown paths.
const siteName = "ConnectHER"

// pageTitles maps route paths to their display titles.
var pageTitles = map[string]string{
	"/":                "Home",
	"/login":           "Login",
	"/register":        "Register",
	"/symptom-checker": "Symptom Checker",
	"/find-a-provider": "Find a Doctor",
	"/name-setup":      "Name Setup",
	"/your-profile":    "Dashboard",
	"/onboarding":      "Onboarding",
}

// PageTitle returns the full browser title for a route path.
func PageTitle(path string) string {
	if title, ok := pageTitles[path]; ok {
		return title + " | " + siteName
	}
	return siteName
}

// PagesHandler serves the page-shell endpoints of the route table. Layout
// and styling live in the client; these endpoints expose the route's
// identity (page name, title) and, on guarded routes, the identity key the
// guard admitted.
type PagesHandler struct{}

// NewPagesHandler creates a PagesHandler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// pageResponse is the shell payload for a route.
type pageResponse struct {
	Page        string `json:"page"`
	Title       string `json:"title"`
	IdentityKey string `json:"identityKey,omitempty"`
}

// HandlePage serves any route in the table, guarded or not.
func (h *PagesHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	resp := pageResponse{
		Page:  r.URL.Path,
		Title: PageTitle(r.URL.Path),
	}

	// Present only when a route guard admitted the request.
	if key, ok := auth.IdentityKeyFromContext(r.Context()); ok {
		resp.IdentityKey = key
	}

	writeJSON(w, http.StatusOK, resp)
}
