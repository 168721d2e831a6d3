package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/pkg/cryptox"
	"github.com/parkmead/sprintdeck/pkg/idx"
)

func TestHousekeepingSweepsExpiredSessionsOnly(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := &SessionService{Store: st}

	user := createTestUser(t, st, "oscar")

	liveToken, err := sessions.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, st.Sessions().CreateSession(ctx, domain.Session{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken("stale-token"),
		UserID:    user.ID,
		CreatedAt: now.Add(-8 * 24 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}))

	hk := NewHousekeepingService(st, slog.Default(), time.Hour)
	hk.Start()
	hk.Stop() // Start runs one cleanup before the first tick

	// The expired row is gone entirely, not just filtered on read.
	_, err = sessions.GetSession(ctx, "stale-token")
	require.ErrorIs(t, err, ErrNoSession)

	_, _, err = sessions.ResolveUser(ctx, liveToken)
	require.NoError(t, err)
}
