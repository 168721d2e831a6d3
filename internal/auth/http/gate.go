package http

import (
	"net/http"
	"strings"

	"github.com/parkmead/sprintdeck/pkg/httpx"
)

// publicPages may be visited without a session; a logged-in visitor is
// bounced to the dashboard instead of seeing them again.
var publicPages = map[string]bool{
	"/login":    true,
	"/register": true,
}

// gateExemptPrefixes are path prefixes the gate never touches: the JSON API
// does its own session handling and static assets carry no access decision.
var gateExemptPrefixes = []string{
	"/api/",
	"/auth/",
	"/static/",
	"/assets/",
}

// gateExemptPaths are exact paths the gate never touches.
var gateExemptPaths = map[string]bool{
	"/favicon.ico": true,
	"/livez":       true,
	"/readyz":      true,
}

func gateExempt(path string) bool {
	if gateExemptPaths[path] {
		return true
	}
	for _, prefix := range gateExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AccessGate is the first, cheap stage of the page pipeline. It classifies
// requests purely on (path, cookie presence) and never touches the store;
// whether the cookie actually resolves to a live session is the guard's
// problem. The verification page counts as protected here: reaching it
// requires a cookie, but the guard is deliberately not applied to it.
func AccessGate() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if gateExempt(path) {
				next.ServeHTTP(w, r)
				return
			}

			hasCookie := sessionToken(r) != ""

			if publicPages[path] {
				if hasCookie {
					http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !hasCookie {
				http.Redirect(w, r, loginRedirectURL(path), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
