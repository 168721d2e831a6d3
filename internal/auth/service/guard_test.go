package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
	"github.com/parkmead/sprintdeck/internal/auth/store"
)

func TestGuardMissingToken(t *testing.T) {
	st := newTestStore(t)
	guard := &Guard{Sessions: &SessionService{Store: st}}

	status, _, _ := guard.Check(context.Background(), "")
	require.Equal(t, StatusUnauthenticated, status)
}

func TestGuardUnknownToken(t *testing.T) {
	st := newTestStore(t)
	guard := &Guard{Sessions: &SessionService{Store: st}}

	status, _, _ := guard.Check(context.Background(), "never-issued")
	require.Equal(t, StatusUnauthenticated, status)
}

func TestGuardUserWithoutTwoFactorIsVerifiedImmediately(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := &SessionService{Store: st}
	guard := &Guard{Sessions: sessions}

	user := createTestUser(t, st, "ivy")
	token, err := sessions.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	status, gotUser, _ := guard.Check(ctx, token)
	require.Equal(t, StatusVerified, status)
	require.Equal(t, user.ID, gotUser.ID)
}

func TestGuardTwoFactorPendingThenVerified(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := &SessionService{Store: st}
	twofactor := &TwoFactorService{Store: st, Issuer: "Sprintdeck"}
	guard := &Guard{Sessions: sessions}

	user := createTestUser(t, st, "jack")

	setup, err := twofactor.Enroll(ctx, user.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, twofactor.Activate(ctx, user.ID, code))

	token, err := sessions.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	status, gotUser, gotSession := guard.Check(ctx, token)
	require.Equal(t, StatusPending, status)
	require.Equal(t, user.ID, gotUser.ID)
	require.False(t, gotSession.TwoFactorVerified)

	require.NoError(t, sessions.MarkVerified(ctx, token))

	// The flip must be visible to the very next check, with no caching.
	status, _, gotSession = guard.Check(ctx, token)
	require.Equal(t, StatusVerified, status)
	require.True(t, gotSession.TwoFactorVerified)
}

func TestGuardExpiredSessionIsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := &SessionService{Store: st, TTL: time.Millisecond}
	guard := &Guard{Sessions: sessions}

	user := createTestUser(t, st, "kate")
	token, err := sessions.CreateSession(ctx, user.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	status, _, _ := guard.Check(ctx, token)
	require.Equal(t, StatusUnauthenticated, status)
}

func TestGuardDanglingUserReference(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := &SessionService{Store: st}
	guard := &Guard{Sessions: sessions}

	// Session referencing a user that was deleted underneath it.
	token, err := sessions.CreateSession(ctx, "01JUSERGONE0000000000000000")
	require.NoError(t, err)

	status, _, _ := guard.Check(ctx, token)
	require.Equal(t, StatusUserGone, status)
}

// faultSessions simulates a store outage on every session operation.
type faultSessions struct{}

var errStoreDown = errors.New("store unreachable")

func (faultSessions) CreateSession(context.Context, domain.Session) error { return errStoreDown }
func (faultSessions) GetSessionByTokenHash(context.Context, string) (domain.Session, error) {
	return domain.Session{}, errStoreDown
}
func (faultSessions) MarkTwoFactorVerified(context.Context, string) error { return errStoreDown }
func (faultSessions) DeleteSession(context.Context, string) error         { return errStoreDown }
func (faultSessions) DeleteExpiredSessions(context.Context) error         { return errStoreDown }

func TestGuardFailsClosedOnStoreFault(t *testing.T) {
	st := newTestStore(t)
	faulty := &store.Composite{Base: st, SessionsOverlay: faultSessions{}}
	guard := &Guard{Sessions: &SessionService{Store: faulty}}

	// A fault must delay access (pending), never grant it.
	status, _, _ := guard.Check(context.Background(), "some-token")
	require.Equal(t, StatusPending, status)
}
