package authsdk

// ErrorResponse is the wire shape of an APIError. Used internally for
// parsing HTTP error responses; client code sees *APIError instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// User is the externally visible user record. Password hashes and TOTP
// secrets never appear here.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	PreferredName    string `json:"preferred_name"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	// Username is the unique login name (3-32 chars)
	Username string `json:"username"`

	// PreferredName is the display name shown in the UI
	PreferredName string `json:"preferred_name"`

	// Password is the plaintext password (8-128 chars); stored as argon2id
	Password string `json:"password"`
}

// RegisterResponse is returned from POST /auth/register.
type RegisterResponse struct {
	User User `json:"user"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned from POST /auth/login. The session token itself
// travels in the Set-Cookie header, never in the body.
type LoginResponse struct {
	User User `json:"user"`

	// RequiresVerification is true when the user has 2FA enabled and the new
	// session has not passed code verification yet.
	RequiresVerification bool `json:"requires_verification"`
}

// SessionResponse is returned from GET /auth/session. User is null when no
// valid session exists; the endpoint never returns an error status.
type SessionResponse struct {
	User *User `json:"user"`
}

// CheckTwoFactorResponse is returned from GET /auth/check-2fa-session.
type CheckTwoFactorResponse struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

// TwoFactorVerifyRequest is the body for POST /auth/verify-2fa and
// POST /auth/2fa/activate.
type TwoFactorVerifyRequest struct {
	// Code is the 6-digit TOTP code from the authenticator app
	Code string `json:"code"`
}

// TwoFactorVerifyResponse is returned from POST /auth/verify-2fa.
type TwoFactorVerifyResponse struct {
	Verified bool `json:"verified"`
}

// TOTPEnrollResponse is returned from POST /auth/2fa/enroll. The recovery
// code is shown exactly once; only its hash is stored.
type TOTPEnrollResponse struct {
	// Secret is the base32-encoded TOTP secret for manual entry
	Secret string `json:"secret"`

	// QRCode is the otpauth:// URI to render as a QR code
	QRCode string `json:"qr_code"`

	// Issuer is the service name shown in the authenticator app
	Issuer string `json:"issuer"`

	// Account is the account label shown in the authenticator app
	Account string `json:"account"`

	// RecoveryCode is the single-use fallback code (shown once)
	RecoveryCode string `json:"recovery_code"`
}

// MessageResponse is a generic success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthChecks reports per-dependency health in a readiness response.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned from GET /livez and GET /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
