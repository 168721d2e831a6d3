package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/httpx"
	"github.com/parkmead/sprintdeck/pkg/slogx"
)

// TwoFactorHandler handles all second-factor endpoints: the per-session
// verification check and flip, and the enroll/activate pair that turns TOTP
// on for a user.
type TwoFactorHandler struct {
	SessionService   *service.SessionService
	TwoFactorService *service.TwoFactorService
	Guard            *service.Guard
}

// HandleCheck handles GET /auth/check-2fa-session.
//
// The status code carries the session's standing, the body the verification
// state: 401 when there is no usable session, 404 when the session's user is
// gone, otherwise 200 with the verified flag. A user without 2FA reads as
// verified. Store faults fail closed to verified=false.
func (h *TwoFactorHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	httpx.NoCache(w)

	status, _, _ := h.Guard.Check(ctx, sessionToken(r))
	switch status {
	case service.StatusUnauthenticated:
		httpx.WriteJSON(w, http.StatusUnauthorized, authsdk.CheckTwoFactorResponse{
			Verified: false,
			Error:    "no valid session",
		})
	case service.StatusUserGone:
		httpx.WriteJSON(w, http.StatusNotFound, authsdk.CheckTwoFactorResponse{
			Verified: false,
			Error:    "user not found",
		})
	case service.StatusPending:
		httpx.WriteJSON(w, http.StatusOK, authsdk.CheckTwoFactorResponse{Verified: false})
	default:
		httpx.WriteJSON(w, http.StatusOK, authsdk.CheckTwoFactorResponse{Verified: true})
	}
}

// HandleVerify handles POST /auth/verify-2fa. A correct code flips the
// current session's verified flag; the flip never reverses.
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.TwoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	token := sessionToken(r)
	user, _, err := h.SessionService.ResolveUser(ctx, token)
	if err != nil {
		h.writeResolveError(w, log, err)
		return
	}

	if err := h.TwoFactorService.VerifyUserCode(ctx, user, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			log.Warn("invalid verification code", "user_id", user.ID)
			authsdk.ErrInvalidCode.WriteError(w)
		case errors.Is(err, service.ErrTwoFactorNotEnrolled):
			log.Warn("verification without enrollment", "user_id", user.ID)
			authsdk.ErrNotEnrolled.WriteError(w)
		default:
			log.Error("failed to verify code", "user_id", user.ID, "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	if err := h.SessionService.MarkVerified(ctx, token); err != nil {
		log.Error("failed to mark session verified", "user_id", user.ID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("session verified", "user_id", user.ID)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorVerifyResponse{Verified: true})
}

// HandleEnroll handles POST /auth/2fa/enroll. The generated secret stays
// inactive until HandleActivate confirms a code from the authenticator.
func (h *TwoFactorHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, _, err := h.SessionService.ResolveUser(ctx, sessionToken(r))
	if err != nil {
		h.writeResolveError(w, log, err)
		return
	}

	setup, err := h.TwoFactorService.Enroll(ctx, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrTwoFactorAlreadyEnabled) {
			log.Warn("enroll with two-factor already enabled", "user_id", user.ID)
			authsdk.ErrAlreadyEnabled.WriteError(w)
			return
		}
		log.Error("failed to enroll", "user_id", user.ID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPEnrollResponse{
		Secret:       setup.Secret,
		QRCode:       setup.QRCode,
		Issuer:       setup.Issuer,
		Account:      setup.Account,
		RecoveryCode: setup.RecoveryCode,
	})
}

// HandleActivate handles POST /auth/2fa/activate. On success the current
// session is also marked verified; the user just proved possession of the
// authenticator, bouncing them straight to the verification page would be
// absurd.
func (h *TwoFactorHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.TwoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	token := sessionToken(r)
	user, _, err := h.SessionService.ResolveUser(ctx, token)
	if err != nil {
		h.writeResolveError(w, log, err)
		return
	}

	if err := h.TwoFactorService.Activate(ctx, user.ID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			log.Warn("invalid activation code", "user_id", user.ID)
			authsdk.ErrInvalidCode.WriteError(w)
		case errors.Is(err, service.ErrTwoFactorAlreadyEnabled):
			log.Warn("activate with two-factor already enabled", "user_id", user.ID)
			authsdk.ErrAlreadyEnabled.WriteError(w)
		case errors.Is(err, service.ErrTwoFactorNotEnrolled):
			log.Warn("activate without enrollment", "user_id", user.ID)
			authsdk.ErrNotEnrolled.WriteError(w)
		default:
			log.Error("failed to activate two-factor", "user_id", user.ID, "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	if err := h.SessionService.MarkVerified(ctx, token); err != nil {
		log.Error("failed to mark activating session verified", "user_id", user.ID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("two-factor enabled", "user_id", user.ID)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "two-factor authentication enabled"})
}

// HandleDisable handles POST /auth/2fa/disable. Requires a current code so a
// hijacked-but-unverified session cannot switch the second factor off.
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.TwoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, _, err := h.SessionService.ResolveUser(ctx, sessionToken(r))
	if err != nil {
		h.writeResolveError(w, log, err)
		return
	}

	if err := h.TwoFactorService.Disable(ctx, user.ID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			log.Warn("invalid disable code", "user_id", user.ID)
			authsdk.ErrInvalidCode.WriteError(w)
		case errors.Is(err, service.ErrTwoFactorNotEnrolled):
			log.Warn("disable without two-factor enabled", "user_id", user.ID)
			authsdk.ErrNotEnrolled.WriteError(w)
		default:
			log.Error("failed to disable two-factor", "user_id", user.ID, "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	log.Info("two-factor disabled", "user_id", user.ID)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "two-factor authentication disabled"})
}

// writeResolveError maps session resolution failures onto API errors shared
// by all session-bound two-factor endpoints.
func (h *TwoFactorHandler) writeResolveError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		log.Warn("request without valid session")
		authsdk.ErrInvalidSession.WriteError(w)
	case errors.Is(err, service.ErrUserGone):
		log.Warn("session references deleted user")
		authsdk.ErrUserNotFound.WriteError(w)
	default:
		log.Error("failed to resolve session", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
