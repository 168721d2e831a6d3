package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/httpx"
	"github.com/parkmead/sprintdeck/pkg/slogx"
)

// RegisterHandler handles POST /auth/register.
type RegisterHandler struct {
	UserService *service.UserService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.UserService.Register(ctx, req.Username, req.PreferredName, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			log.Warn("username taken", "username", req.Username)
			authsdk.ErrUsernameTaken.WriteError(w)
			return
		}
		log.Error("failed to register user", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		User: publicUser(user),
	})
}
