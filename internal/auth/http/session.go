package http

import (
	"errors"
	"net/http"

	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/httpx"
	"github.com/parkmead/sprintdeck/pkg/slogx"
)

// SessionHandler handles GET /auth/session. The response is always 200 with
// either the current user or null: the page shell polls this endpoint to
// decide what to render, and a transient store fault must read as "logged
// out", never as a broken page.
type SessionHandler struct {
	SessionService *service.SessionService
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	httpx.NoCache(w)

	token := sessionToken(r)
	if token == "" {
		httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{User: nil})
		return
	}

	user, _, err := h.SessionService.ResolveUser(ctx, token)
	if err != nil {
		if !errors.Is(err, service.ErrNoSession) && !errors.Is(err, service.ErrUserGone) {
			slogx.FromContext(ctx).Error("failed to resolve session", "err", err)
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{User: nil})
		return
	}

	u := publicUser(user)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{User: &u})
}
