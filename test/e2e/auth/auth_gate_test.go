package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parkmead/sprintdeck/pkg/authsdk"
)

// TestGateRedirectsAnonymousVisitors verifies the cheap edge stage: no
// cookie means protected pages bounce to login with the origin preserved.
func TestGateRedirectsAnonymousVisitors(t *testing.T) {
	baseURL := setupAuthServer(t)
	client := authsdk.NewClient(baseURL)

	resp, err := client.Get(t.Context(), "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?from=%2Fdashboard", resp.Header.Get("Location"))

	// Public pages render for the anonymous visitor.
	resp, err = client.Get(t.Context(), "/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestGateBouncesLoggedInVisitorsOffPublicPages verifies the opposite edge:
// with a cookie, /login and /register redirect to the dashboard.
func TestGateBouncesLoggedInVisitorsOffPublicPages(t *testing.T) {
	baseURL := setupAuthServer(t)
	client := authsdk.NewClient(baseURL)
	registerAndLogin(t, client, "gina")

	for _, path := range []string{"/login", "/register"} {
		resp, err := client.Get(t.Context(), path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	}
}

// TestGuardRoutesPendingSessionsToVerification verifies the store-backed
// stage: an unverified 2FA session reaches the verification page and nothing
// else, and passes once verified.
func TestGuardRoutesPendingSessionsToVerification(t *testing.T) {
	baseURL := setupAuthServer(t)

	owner := authsdk.NewClient(baseURL)
	registerAndLogin(t, owner, "henry")
	secret := enrollAndActivate(t, owner)

	client := authsdk.NewClient(baseURL)
	login, err := client.Login(t.Context(), "henry", testPassword)
	require.NoError(t, err)
	require.True(t, login.RequiresVerification)

	// Pending session: dashboard redirects to verification.
	resp, err := client.Get(t.Context(), "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.Contains(t, loc, "/verify-2fa?")
	require.Contains(t, loc, "from=%2Fdashboard")
	require.Contains(t, loc, "userId="+login.User.ID)

	// The verification page itself is reachable.
	resp, err = client.Get(t.Context(), "/verify-2fa")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// After verifying, the dashboard opens.
	_, err = client.VerifyTwoFactor(t.Context(), totpCode(t, secret))
	require.NoError(t, err)

	resp, err = client.Get(t.Context(), "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestLoggedOutVisitorRedirectedToLogin verifies that after logout the
// visitor is back on the anonymous path through the gate.
func TestLoggedOutVisitorRedirectedToLogin(t *testing.T) {
	baseURL := setupAuthServer(t)
	client := authsdk.NewClient(baseURL)
	registerAndLogin(t, client, "iris")

	// Logout deletes the session and expires the cookie in the jar.
	require.NoError(t, client.Logout(t.Context()))

	resp, err := client.Get(t.Context(), "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?from=%2Fdashboard", resp.Header.Get("Location"))
}

// TestHealthEndpoints verifies the probes answer without a session.
func TestHealthEndpoints(t *testing.T) {
	baseURL := setupAuthServer(t)
	client := authsdk.NewClient(baseURL)

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := client.Get(t.Context(), path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
