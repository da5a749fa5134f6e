package domain

import (
	"context"
	"time"
)

// LoginResult is returned to the transport layer after a successful login.
type LoginResult struct {
	Subject     string    `json:"subject"`
	Token       string    `json:"-"`             // raw signed token, also the session cache key
	BearerToken string    `json:"authorization"` // "Bearer <token>", sent in the Authorization header
	ExpiresAt   time.Time `json:"expires_at"`

	// SessionPersisted is false when the cache write failed. The token is still
	// cryptographically valid but cannot be revoked through the session store.
	SessionPersisted bool `json:"-"`
}

// AuthenticatedSession is attached to the request context once a bearer token
// has passed signature, expiry and session-store checks.
type AuthenticatedSession struct {
	Subject   string
	Token     string
	ExpiresAt time.Time
	Degraded  bool // accepted on signature alone because the session store could not answer
}

// CredentialVerifier hashes and checks passwords with a slow salted hash.
// Both operations are CPU-bound and may wait for a hashing slot; ctx bounds that wait.
type CredentialVerifier interface {
	Hash(ctx context.Context, plaintext string) (string, error)

	// Verify returns ErrCredentialMismatch when plaintext does not match hash.
	Verify(ctx context.Context, hash, plaintext string) error

	// VerifyUnknown burns the same work as Verify against a fixed hash. Called for
	// unknown accounts so lookup misses and wrong passwords take similar time.
	VerifyUnknown(ctx context.Context, plaintext string)
}

// TokenIssuer creates and validates signed, expiring session tokens.
// Validation is purely cryptographic and temporal; it never consults the session store.
type TokenIssuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)

	// Validate returns the subject, ErrTokenExpired or ErrTokenInvalid.
	Validate(token string) (subject string, expiresAt time.Time, err error)
}
