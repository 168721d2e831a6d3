package domain

// TwoFactorSetup is the transient payload produced by a TOTP enrollment
// attempt. It is never persisted as-is: the secret is written onto the user
// record, the recovery code is stored only as a hash, and the caller is
// responsible for displaying the recovery code exactly once.
type TwoFactorSetup struct {
	Secret       string // Base32 encoded shared TOTP key
	QRCode       string // otpauth:// URL for QR code generation
	Issuer       string // Issuer name (the service name)
	Account      string // Account label (the username)
	RecoveryCode string // Single-use fallback credential, shown once
}
