package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Client is a client for the Sprintdeck authentication service. The session
// cookie issued by Login is held in an in-memory cookie jar and sent on every
// subsequent request, mirroring how a browser talks to the service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new auth service client with a fresh cookie jar.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			// Redirects are part of the gate's contract; callers inspect
			// them rather than follow them.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Register creates a new user account. It does not log the user in.
func (c *Client) Register(ctx context.Context, username, preferredName, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", RegisterRequest{
		Username:      username,
		PreferredName: preferredName,
		Password:      password,
	}, &out, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with a username/password pair. On success the session
// cookie lands in the client's jar and is sent on every later request.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", LoginRequest{
		Username: username,
		Password: password,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the current session. Safe to call without one.
func (c *Client) Logout(ctx context.Context) error {
	var out MessageResponse
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, &out, http.StatusOK)
}

// Session returns the current session's user, or a nil User when no valid
// session exists. The endpoint never fails with an error status.
func (c *Client) Session(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	err := c.doJSON(ctx, http.MethodGet, "/auth/session", nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckTwoFactor reports the session's second-factor verification state. The
// endpoint answers with its own JSON shape on 401 (no session) and 404 (user
// gone) as well as 200, so those statuses decode rather than error.
func (c *Client) CheckTwoFactor(ctx context.Context) (*CheckTwoFactorResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/check-2fa-session", nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnauthorized, http.StatusNotFound:
		var out CheckTwoFactorResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
		return &out, resp.StatusCode, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, parseErrorResponse(resp, body)
	}
}

// VerifyTwoFactor submits a TOTP code to mark the current session as
// second-factor verified.
func (c *Client) VerifyTwoFactor(ctx context.Context, code string) (*TwoFactorVerifyResponse, error) {
	var out TwoFactorVerifyResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/verify-2fa", TwoFactorVerifyRequest{Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrollTwoFactor generates a TOTP secret for the current user. 2FA is not
// active until ActivateTwoFactor confirms a code.
func (c *Client) EnrollTwoFactor(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/2fa/enroll", nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ActivateTwoFactor confirms a code against the pending secret and turns 2FA
// on for the user.
func (c *Client) ActivateTwoFactor(ctx context.Context, code string) error {
	var out MessageResponse
	return c.doJSON(ctx, http.MethodPost, "/auth/2fa/activate", TwoFactorVerifyRequest{Code: code}, &out, http.StatusOK)
}

// DisableTwoFactor turns 2FA off for the current user after verifying a
// current code.
func (c *Client) DisableTwoFactor(ctx context.Context, code string) error {
	var out MessageResponse
	return c.doJSON(ctx, http.MethodPost, "/auth/2fa/disable", TwoFactorVerifyRequest{Code: code}, &out, http.StatusOK)
}

// Get performs a plain GET against the service, cookie jar attached. Used to
// exercise gated pages; the caller inspects the status and Location header.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, target, expectedStatus)
}

// decodeJSON decodes a JSON response into target, or returns a typed
// *APIError when the status does not match.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorResponse converts an error response body into an *APIError,
// falling back to a generic error for non-JSON bodies.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
