package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/httpx"
	"github.com/parkmead/sprintdeck/pkg/slogx"
)

// publicUser maps a domain user onto the SDK's wire shape.
func publicUser(u domain.User) authsdk.User {
	p := u.Public()
	return authsdk.User{
		ID:               p.ID,
		Username:         p.Username,
		PreferredName:    p.PreferredName,
		Role:             p.Role,
		TwoFactorEnabled: p.TwoFactorEnabled,
	}
}

// LoginHandler handles POST /auth/login.
type LoginHandler struct {
	UserService    *service.UserService
	SessionService *service.SessionService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.UserService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("login failed", "username", req.Username)
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("failed to authenticate user", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	token, err := h.SessionService.CreateSession(ctx, user.ID)
	if err != nil {
		log.Error("failed to create session", "user_id", user.ID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("user logged in", "user_id", user.ID, "requires_verification", user.TwoFactorEnabled())

	setSessionCookie(w, token, h.SessionService.SessionTTL())
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		User:                 publicUser(user),
		RequiresVerification: user.TwoFactorEnabled(),
	})
}
