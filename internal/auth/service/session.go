package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/internal/auth/store"
	"github.com/parkmead/sprintdeck/pkg/cryptox"
	"github.com/parkmead/sprintdeck/pkg/idx"
)

// DefaultSessionTTL is how long a login session stays valid. Expiry is
// passive: every read re-checks the deadline, nothing depends on a sweep.
const DefaultSessionTTL = 7 * 24 * time.Hour

var (
	ErrNoSession = errors.New("no valid session")
	ErrUserGone  = errors.New("session references a deleted user")
)

// SessionService issues, resolves and invalidates opaque session tokens.
// Every call re-reads the backing store so that verified-flag changes are
// immediately visible to concurrent requests for the same user.
type SessionService struct {
	Store store.Store
	TTL   time.Duration // zero means DefaultSessionTTL
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// SessionTTL returns the effective session lifetime. The HTTP layer uses it
// to bound the cookie's Max-Age to the server-side expiry.
func (s *SessionService) SessionTTL() time.Duration {
	return s.ttl()
}

// CreateSession mints a 256-bit random bearer token, persists the session
// keyed by the token's fingerprint and returns the raw token for the caller
// to set as an HTTP-only cookie.
func (s *SessionService) CreateSession(ctx context.Context, userID string) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:                idx.New().String(),
		TokenHash:         cryptox.FingerprintToken(token),
		UserID:            userID,
		TwoFactorVerified: false,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.ttl()),
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	return token, nil
}

// GetSession returns the raw session record for a token, expired or not.
// Expiry filtering happens in ResolveUser only, so the lazy-expiry policy
// has a single point of repair.
func (s *SessionService) GetSession(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to look up session: %w", err)
	}
	return session, nil
}

// ResolveUser resolves a token to its session and owning user. An absent or
// expired session yields ErrNoSession; a session whose user record has been
// deleted yields ErrUserGone.
func (s *SessionService) ResolveUser(ctx context.Context, token string) (domain.User, domain.Session, error) {
	session, err := s.GetSession(ctx, token)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}

	if session.Expired(time.Now().UTC()) {
		return domain.User{}, domain.Session{}, ErrNoSession
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.Session{}, ErrUserGone
	}
	if err != nil {
		return domain.User{}, domain.Session{}, fmt.Errorf("failed to look up session user: %w", err)
	}

	return user, session, nil
}

// MarkVerified flips the session's second-factor flag to true. Calling it
// again on an already verified session is harmless.
func (s *SessionService) MarkVerified(ctx context.Context, token string) error {
	err := s.Store.Sessions().MarkTwoFactorVerified(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoSession
	}
	if err != nil {
		return fmt.Errorf("failed to mark session verified: %w", err)
	}
	return nil
}

// DeleteSession invalidates a token (logout). Deleting an unknown token is
// not an error.
func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	if err := s.Store.Sessions().DeleteSession(ctx, cryptox.FingerprintToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
