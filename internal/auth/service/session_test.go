package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/internal/auth/store"
	"github.com/parkmead/sprintdeck/internal/auth/store/drivers/sqlite"
	"github.com/parkmead/sprintdeck/pkg/cryptox"
	"github.com/parkmead/sprintdeck/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createTestUser(t *testing.T, st store.Store, username string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := domain.User{
		ID:            idx.New().String(),
		Username:      username,
		PreferredName: username,
		PasswordHash:  "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		Role:          "member",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

func TestCreateAndResolveSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	user := createTestUser(t, st, "alice")

	token, err := svc.CreateSession(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, token, 43, "256-bit base64url token")

	gotUser, gotSession, err := svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, gotUser.ID)
	require.Equal(t, user.ID, gotSession.UserID)
	require.False(t, gotSession.TwoFactorVerified)
	require.WithinDuration(t, gotSession.CreatedAt.Add(DefaultSessionTTL), gotSession.ExpiresAt, time.Second)
}

func TestResolveUserUnknownToken(t *testing.T) {
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	_, _, err := svc.ResolveUser(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestResolveUserExpiredSessionTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	user := createTestUser(t, st, "bob")

	// Insert an already expired session directly; the raw row exists but
	// resolution must treat it as absent.
	token := "expired-bearer-token"
	now := time.Now().UTC()
	require.NoError(t, st.Sessions().CreateSession(ctx, domain.Session{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    user.ID,
		CreatedAt: now.Add(-8 * 24 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}))

	raw, err := svc.GetSession(ctx, token)
	require.NoError(t, err, "GetSession returns the raw record, expired or not")
	require.True(t, raw.Expired(now))

	_, _, err = svc.ResolveUser(ctx, token)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestResolveUserDanglingReference(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	token := "orphan-bearer-token"
	now := time.Now().UTC()
	require.NoError(t, st.Sessions().CreateSession(ctx, domain.Session{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    idx.New().String(), // no such user
		CreatedAt: now,
		ExpiresAt: now.Add(DefaultSessionTTL),
	}))

	_, _, err := svc.ResolveUser(ctx, token)
	require.ErrorIs(t, err, ErrUserGone)
}

func TestMarkVerifiedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	user := createTestUser(t, st, "carol")
	token, err := svc.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.MarkVerified(ctx, token))
	require.NoError(t, svc.MarkVerified(ctx, token))

	_, session, err := svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	require.True(t, session.TwoFactorVerified)
}

func TestMarkVerifiedUnknownToken(t *testing.T) {
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	err := svc.MarkVerified(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	user := createTestUser(t, st, "dave")
	token, err := svc.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, token))

	_, _, err = svc.ResolveUser(ctx, token)
	require.ErrorIs(t, err, ErrNoSession)

	// Deleting again is harmless.
	require.NoError(t, svc.DeleteSession(ctx, token))
}

func TestSessionsAreIndependentPerLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	user := createTestUser(t, st, "erin")

	tokenA, err := svc.CreateSession(ctx, user.ID)
	require.NoError(t, err)
	tokenB, err := svc.CreateSession(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, tokenA, tokenB)

	// Verifying one session must not verify the other.
	require.NoError(t, svc.MarkVerified(ctx, tokenA))

	_, sessA, err := svc.ResolveUser(ctx, tokenA)
	require.NoError(t, err)
	_, sessB, err := svc.ResolveUser(ctx, tokenB)
	require.NoError(t, err)

	require.True(t, sessA.TwoFactorVerified)
	require.False(t, sessB.TwoFactorVerified)
}
