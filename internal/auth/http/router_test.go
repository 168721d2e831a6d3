package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/internal/auth/store/drivers/sqlite"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/cryptox"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := &service.SessionService{Store: st}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter("test", st, logger)
	r.UserService = &service.UserService{Store: st}
	r.SessionService = sessions
	r.TwoFactorService = &service.TwoFactorService{Store: st, Issuer: "Sprintdeck"}
	r.Guard = &service.Guard{Sessions: sessions}
	r.ApplyRoutes()
	return r
}

// doJSON runs one request through the full router, middleware chain included.
func doJSON(t *testing.T, r *Router, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.RemoteAddr = "192.0.2.1:50000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerAndLogin creates a user over the API and returns the session
// cookies from a fresh login.
func registerAndLogin(t *testing.T, r *Router, username, password string) []*http.Cookie {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/auth/register", authsdk.RegisterRequest{
		Username:      username,
		PreferredName: username,
		Password:      password,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/auth/login", authsdk.LoginRequest{
		Username: username,
		Password: password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}
