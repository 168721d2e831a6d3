package http

import (
	"net/http"

	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/httpx"
	"github.com/parkmead/sprintdeck/pkg/slogx"
)

// LogoutHandler handles POST /auth/logout. Logging out without a session is
// fine; the endpoint clears the cookie either way.
type LogoutHandler struct {
	SessionService *service.SessionService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := sessionToken(r); token != "" {
		if err := h.SessionService.DeleteSession(ctx, token); err != nil {
			// The cookie is cleared regardless; a stale store row is the
			// housekeeping sweep's problem.
			slogx.FromContext(ctx).Error("failed to delete session on logout", "err", err)
		}
	}

	clearSessionCookie(w)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "logged out"})
}
