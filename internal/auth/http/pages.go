package http

import (
	"fmt"
	"net/http"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/pkg/httpx"
)

// The pages are deliberately bare shells. The real Sprintdeck frontend is a
// separate application; these exist so the gate and guard have concrete
// routes to protect and the redirects land somewhere that answers 200.

const pageTemplate = `<!doctype html>
<html><head><title>%s - Sprintdeck</title></head>
<body><h1>%s</h1></body></html>
`

// PageHandler renders a named placeholder page.
func PageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, pageTemplate, title, title)
	}
}

// DashboardHandler renders the dashboard shell. It runs behind the guard, so
// the context always carries a verified user.
func DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(httpx.CtxKeyUser).(domain.User)
		if !ok {
			// Guard misconfiguration; do not render protected content.
			http.Redirect(w, r, loginRedirectURL(r.URL.Path), http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, pageTemplate, "Dashboard", "Welcome, "+user.PreferredName)
	}
}
