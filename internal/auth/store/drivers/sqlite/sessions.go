package sqlite

import (
	"context"
	"time"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
)

type sessionsRepo struct {
	q queryer
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (id, token_hash, user_id, two_factor_verified, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, s.UserID, s.TwoFactorVerified, s.CreatedAt, s.ExpiresAt)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	// Expired rows are returned as-is; the resolving caller re-checks
	// expires_at on every read.
	row := r.q.QueryRowContext(ctx,
		`SELECT id, token_hash, user_id, two_factor_verified, created_at, expires_at
		 FROM sessions WHERE token_hash = ?`, tokenHash)

	var s domain.Session
	err := row.Scan(&s.ID, &s.TokenHash, &s.UserID, &s.TwoFactorVerified, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) MarkTwoFactorVerified(ctx context.Context, tokenHash string) error {
	// Idempotent by construction: re-running the UPDATE leaves the row
	// unchanged, and a zero-row match means the session is gone.
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET two_factor_verified = 1 WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	return err
}
