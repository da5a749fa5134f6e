package domain

import (
	"context"
	"time"
)

// DefaultSessionTTL is the lifetime given to a login session when the caller does not pick one.
const DefaultSessionTTL = 8 * time.Hour

type expiryKind uint8

const (
	expiryUnset expiryKind = iota
	expiryAfter
	expiryNever
)

// Expiry is the per-write expiry choice for a cache entry. The zero value means
// "no choice made"; a plain Set rejects it so that an entry which never expires
// is always requested explicitly with NoExpiry.
type Expiry struct {
	kind expiryKind
	ttl  time.Duration
}

// ExpireAfter returns an Expiry that removes the entry once ttl has elapsed.
func ExpireAfter(ttl time.Duration) Expiry {
	return Expiry{kind: expiryAfter, ttl: ttl}
}

// NoExpiry returns an Expiry for an entry that persists until deleted.
func NoExpiry() Expiry {
	return Expiry{kind: expiryNever}
}

// IsZero reports whether no expiry choice was made.
func (e Expiry) IsZero() bool { return e.kind == expiryUnset }

// Never reports whether the entry is meant to persist without expiry.
func (e Expiry) Never() bool { return e.kind == expiryNever }

// TTL returns the duration for an ExpireAfter value and false otherwise.
func (e Expiry) TTL() (time.Duration, bool) {
	if e.kind != expiryAfter {
		return 0, false
	}
	return e.ttl, true
}

// SessionStore holds token -> subject mappings in the external key-value cache.
// Every operation leases one pooled connection for its duration.
// Failures are reported as ErrCacheUnavailable, ErrPoolExhausted or ErrCacheProtocol.
type SessionStore interface {
	// Set writes key=value, overwriting any existing value. The expiry must be explicit.
	Set(ctx context.Context, key, value string, expiry Expiry) error

	// SetLogin writes a login session. A zero Expiry means DefaultSessionTTL.
	SetLogin(ctx context.Context, key, value string, expiry Expiry) error

	// Get returns the value and true, or "" and false when the key is absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes the key and returns how many keys were removed (0 or 1).
	Delete(ctx context.Context, key string) (int64, error)

	Exists(ctx context.Context, key string) (bool, error)

	// RefreshTTL resets the expiry of an existing key. It returns false, without
	// creating anything, when the key does not exist.
	RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// TTL returns the remaining lifetime. The bool is false when the key is absent;
	// a negative duration with true means the key has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
}
