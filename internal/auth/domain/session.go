package domain

import "time"

// Session is a server-side login session. The client holds only the opaque
// bearer token (cookie); the store keys the record by the token's SHA-256
// fingerprint so a database leak does not leak usable credentials.
type Session struct {
	ID                string
	TokenHash         string // SHA-256 fingerprint of the bearer token
	UserID            string // reference, not owning; the user may be deleted underneath us
	TwoFactorVerified bool   // flips false -> true exactly once, never back
	CreatedAt         time.Time
	ExpiresAt         time.Time // always CreatedAt + fixed TTL
}

// Expired reports whether the session is past its expiry at the given time.
// Expiry is lazy: rows may outlive ExpiresAt in the store, so every read
// must re-check rather than trust the record's existence.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
