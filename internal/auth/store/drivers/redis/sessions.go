// Package redis provides a redis-backed Sessions repository. Users and
// recovery codes stay in the relational driver; only the hot session path
// moves here, overlaid onto the base store via store.Composite.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix namespaces session records in the keyspace.
const sessionKeyPrefix = "session:"

type Sessions struct {
	rdb *redis.Client
}

// NewSessions connects to redis at the given URL and pings it before
// returning, so misconfiguration fails at startup rather than on the first
// request.
func NewSessions(url string) (*Sessions, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &Sessions{rdb: client}, nil
}

// NewSessionsFromClient wraps an existing client. Used by tests (miniredis).
func NewSessionsFromClient(client *redis.Client) *Sessions {
	return &Sessions{rdb: client}
}

func (s *Sessions) Close() error { return s.rdb.Close() }

// record is the persisted shape of a session. Kept separate from the domain
// struct so the wire format is explicit and validated on the way back in.
type record struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	TwoFactorVerified bool      `json:"two_factor_verified"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func (s *Sessions) CreateSession(ctx context.Context, sess domain.Session) error {
	data, err := json.Marshal(record{
		ID:                sess.ID,
		UserID:            sess.UserID,
		TwoFactorVerified: sess.TwoFactorVerified,
		CreatedAt:         sess.CreatedAt,
		ExpiresAt:         sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	// The key TTL mirrors expires_at, so redis evicts what the lazy-expiry
	// check would reject anyway.
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired at creation")
	}

	ok, err := s.rdb.SetNX(ctx, sessionKeyPrefix+sess.TokenHash, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Sessions) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+tokenHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("reading session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("malformed session record: %w", err)
	}
	if rec.UserID == "" || rec.ExpiresAt.IsZero() {
		return domain.Session{}, fmt.Errorf("malformed session record: missing fields")
	}

	return domain.Session{
		ID:                rec.ID,
		TokenHash:         tokenHash,
		UserID:            rec.UserID,
		TwoFactorVerified: rec.TwoFactorVerified,
		CreatedAt:         rec.CreatedAt,
		ExpiresAt:         rec.ExpiresAt,
	}, nil
}

func (s *Sessions) MarkTwoFactorVerified(ctx context.Context, tokenHash string) error {
	sess, err := s.GetSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		return err
	}
	if sess.TwoFactorVerified {
		return nil // already flipped, nothing to write
	}

	sess.TwoFactorVerified = true
	data, err := json.Marshal(record{
		ID:                sess.ID,
		UserID:            sess.UserID,
		TwoFactorVerified: sess.TwoFactorVerified,
		CreatedAt:         sess.CreatedAt,
		ExpiresAt:         sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	// KeepTTL preserves the original expiry; verification never extends a session.
	if err := s.rdb.Set(ctx, sessionKeyPrefix+tokenHash, data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return nil
}

func (s *Sessions) DeleteSession(ctx context.Context, tokenHash string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+tokenHash).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions is a no-op: redis key TTLs already evict expired
// sessions, which is exactly what the sqlite sweep does by hand.
func (s *Sessions) DeleteExpiredSessions(ctx context.Context) error {
	return nil
}
