package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/pkg/httpx"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_token"

// sessionToken extracts the bearer token from the session cookie, or ""
// when the cookie is absent.
func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// setSessionCookie attaches a freshly issued session token to the response.
// HttpOnly and SameSite=Lax: the token is invisible to page scripts and is
// not sent on cross-site POSTs.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// loginRedirectURL builds the login redirect preserving the originally
// requested path.
func loginRedirectURL(from string) string {
	return "/login?from=" + url.QueryEscape(from)
}

// verifyRedirectURL builds the second-factor verification redirect. The user
// id is informational for the verification page; it may be empty when the
// guard failed closed before resolving the user.
func verifyRedirectURL(from, userID string) string {
	q := url.Values{}
	q.Set("from", from)
	if userID != "" {
		q.Set("userId", userID)
	}
	return "/verify-2fa?" + q.Encode()
}

// GuardMiddleware is the second, store-backed stage of the page pipeline. It
// runs after the gate's cheap cookie check and resolves the session for real:
// anonymous or orphaned sessions bounce to the login page, sessions still
// owing a second factor bounce to the verification page, and verified
// requests proceed with the user and session attached to the context.
func GuardMiddleware(guard *service.Guard) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, user, session := guard.Check(r.Context(), sessionToken(r))

			switch status {
			case service.StatusUnauthenticated, service.StatusUserGone:
				// A dangling cookie is worthless; clear it on the way out.
				clearSessionCookie(w)
				http.Redirect(w, r, loginRedirectURL(r.URL.Path), http.StatusSeeOther)
				return
			case service.StatusPending:
				http.Redirect(w, r, verifyRedirectURL(r.URL.Path, user.ID), http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), httpx.CtxKeyUserID, user.ID)
			ctx = context.WithValue(ctx, httpx.CtxKeyUser, user)
			ctx = context.WithValue(ctx, httpx.CtxKeySession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
