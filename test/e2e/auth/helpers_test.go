package auth_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	httpapi "github.com/parkmead/sprintdeck/internal/auth/http"
	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/internal/auth/store/drivers/sqlite"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/cryptox"
)

/*
 * Common helpers for auth service end-to-end tests. The full router runs
 * in-process behind an httptest.Server and is exercised exclusively through
 * the SDK client, cookie jar and all.
 */

const (
	testPassword = "Sprint123!"
)

// setupAuthServer starts the complete auth service against a fresh in-memory
// store and returns its base URL.
func setupAuthServer(t *testing.T) string {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := &service.SessionService{Store: st}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := httpapi.NewRouter("e2e-test", st, logger)
	router.UserService = &service.UserService{Store: st}
	router.SessionService = sessions
	router.TwoFactorService = &service.TwoFactorService{Store: st, Issuer: "Sprintdeck"}
	router.Guard = &service.Guard{Sessions: sessions}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

// registerAndLogin creates a user and logs them in on the given client.
func registerAndLogin(t *testing.T, client *authsdk.Client, username string) *authsdk.LoginResponse {
	t.Helper()

	_, err := client.Register(t.Context(), username, username, testPassword)
	require.NoError(t, err)

	login, err := client.Login(t.Context(), username, testPassword)
	require.NoError(t, err)
	return login
}

// enrollAndActivate turns TOTP on for the client's current user and returns
// the shared secret for generating codes in the test.
func enrollAndActivate(t *testing.T, client *authsdk.Client) string {
	t.Helper()

	enroll, err := client.EnrollTwoFactor(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, enroll.Secret)

	require.NoError(t, client.ActivateTwoFactor(t.Context(), totpCode(t, enroll.Secret)))
	return enroll.Secret
}

func totpCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}
