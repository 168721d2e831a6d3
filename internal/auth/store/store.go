package store

import (
	"context"
	"errors"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, or
// sqlite-plus-redis via Composite) implement this. It exposes
// sub-repositories to keep concerns tidy and testable. Records cross this
// boundary as fully typed structs; malformed rows surface as errors here
// rather than propagating ambiguous shapes upward.
//
// The handle is constructed once at process start and injected into every
// service; there is no ambient package-level connection.
type Store interface {
	Users() Users
	Sessions() Sessions
	RecoveryCodes() RecoveryCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., enabling
	// 2FA together with storing the recovery code hash).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is still reachable.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateTwoFactorSecret sets the pending TOTP secret for a user.
	UpdateTwoFactorSecret(ctx context.Context, userID string, secret string) error

	// EnableTwoFactor marks 2FA as enabled for a user (sets the enabled timestamp).
	EnableTwoFactor(ctx context.Context, userID string) error

	// DisableTwoFactor clears both the enabled timestamp and the secret.
	DisableTwoFactor(ctx context.Context, userID string) error
}

type Sessions interface {
	// CreateSession stores a new session record keyed by token hash.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the raw session record, expired or not.
	// Expiry filtering is deliberately left to the resolving caller so there
	// is a single point of repair for the lazy-expiry policy.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// MarkTwoFactorVerified sets two_factor_verified = true for the session
	// matching the token hash. Safe to call repeatedly.
	MarkTwoFactorVerified(ctx context.Context, tokenHash string) error

	// DeleteSession removes a session (logout).
	DeleteSession(ctx context.Context, tokenHash string) error

	// DeleteExpiredSessions is housekeeping; reads never rely on it.
	DeleteExpiredSessions(ctx context.Context) error
}

type RecoveryCodes interface {
	// CreateRecoveryCode stores a recovery code hash for a user.
	CreateRecoveryCode(ctx context.Context, userID string, codeHash string) error

	// DeleteAllRecoveryCodes removes all recovery codes for a user.
	DeleteAllRecoveryCodes(ctx context.Context, userID string) error

	// CountUserRecoveryCodes returns the number of recovery codes for a user.
	CountUserRecoveryCodes(ctx context.Context, userID string) (int, error)
}
