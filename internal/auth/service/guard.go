package service

import (
	"context"
	"errors"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/pkg/slogx"
)

// VerificationStatus is the outcome of the second-factor session guard for
// one request.
type VerificationStatus int

const (
	// StatusUnauthenticated means no valid, unexpired session was found.
	StatusUnauthenticated VerificationStatus = iota
	// StatusUserGone means the session is valid but references a deleted user.
	StatusUserGone
	// StatusPending means the user has 2FA enabled and this session has not
	// passed verification yet. Also the fail-closed outcome for store faults.
	StatusPending
	// StatusVerified means the request may proceed to protected content.
	StatusVerified
)

func (v VerificationStatus) String() string {
	switch v {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusUserGone:
		return "user_gone"
	case StatusPending:
		return "pending_verification"
	case StatusVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// Guard is the full, store-backed stage of the access-control pipeline. The
// cookie-presence edge check (the cheap stage) lives in the HTTP layer; this
// stage resolves the session against the store and decides whether the
// request may reach protected content.
type Guard struct {
	Sessions *SessionService
}

// Check resolves the token and classifies the request. Users without 2FA go
// straight to StatusVerified; the TOTP engine is never consulted here. Any
// store fault collapses to StatusPending so that an outage can delay access
// but never grant it.
func (g *Guard) Check(ctx context.Context, token string) (VerificationStatus, domain.User, domain.Session) {
	if token == "" {
		return StatusUnauthenticated, domain.User{}, domain.Session{}
	}

	user, session, err := g.Sessions.ResolveUser(ctx, token)
	switch {
	case errors.Is(err, ErrNoSession):
		return StatusUnauthenticated, domain.User{}, domain.Session{}
	case errors.Is(err, ErrUserGone):
		return StatusUserGone, domain.User{}, domain.Session{}
	case err != nil:
		slogx.FromContext(ctx).Error("guard: session resolution failed, failing closed", "err", err)
		return StatusPending, domain.User{}, domain.Session{}
	}

	if !user.TwoFactorEnabled() {
		return StatusVerified, user, session
	}

	if !session.TwoFactorVerified {
		return StatusPending, user, session
	}

	return StatusVerified, user, session
}
