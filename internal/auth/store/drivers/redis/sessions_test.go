package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/internal/auth/store"
	"github.com/parkmead/sprintdeck/pkg/idx"
)

func newTestSessions(t *testing.T) (*Sessions, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionsFromClient(client), mr
}

func testSession(hash string) domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Session{
		ID:        idx.New().String(),
		TokenHash: hash,
		UserID:    idx.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo, _ := newTestSessions(t)
	ctx := context.Background()

	sess := testSession("hash-a")
	require.NoError(t, repo.CreateSession(ctx, sess))

	got, err := repo.GetSessionByTokenHash(ctx, "hash-a")
	require.NoError(t, err)
	require.Equal(t, sess.UserID, got.UserID)
	require.False(t, got.TwoFactorVerified)
	require.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestCreateSessionRejectsDuplicateToken(t *testing.T) {
	repo, _ := newTestSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, testSession("hash-dup")))
	err := repo.CreateSession(ctx, testSession("hash-dup"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetSessionMissing(t *testing.T) {
	repo, _ := newTestSessions(t)

	_, err := repo.GetSessionByTokenHash(context.Background(), "no-such-hash")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkTwoFactorVerifiedIsIdempotentAndKeepsTTL(t *testing.T) {
	repo, mr := newTestSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, testSession("hash-v")))
	ttlBefore := mr.TTL(sessionKeyPrefix + "hash-v")

	require.NoError(t, repo.MarkTwoFactorVerified(ctx, "hash-v"))
	require.NoError(t, repo.MarkTwoFactorVerified(ctx, "hash-v"))

	got, err := repo.GetSessionByTokenHash(ctx, "hash-v")
	require.NoError(t, err)
	require.True(t, got.TwoFactorVerified)

	require.InDelta(t, ttlBefore.Seconds(), mr.TTL(sessionKeyPrefix+"hash-v").Seconds(), 2)
}

func TestMarkTwoFactorVerifiedMissingSession(t *testing.T) {
	repo, _ := newTestSessions(t)

	err := repo.MarkTwoFactorVerified(context.Background(), "gone")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	repo, _ := newTestSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, testSession("hash-del")))
	require.NoError(t, repo.DeleteSession(ctx, "hash-del"))

	_, err := repo.GetSessionByTokenHash(ctx, "hash-del")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExpiredSessionsEvictedByTTL(t *testing.T) {
	repo, mr := newTestSessions(t)
	ctx := context.Background()

	sess := testSession("hash-exp")
	sess.ExpiresAt = time.Now().Add(time.Second)
	require.NoError(t, repo.CreateSession(ctx, sess))

	mr.FastForward(2 * time.Second)

	_, err := repo.GetSessionByTokenHash(ctx, "hash-exp")
	require.ErrorIs(t, err, store.ErrNotFound)
}
