package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
	"gitlab.com/timkado/api/staff-auth-service/pkg/crypto"
)

// SessionStoreAdapter implements domain.SessionStore on top of the cache pool.
// Keys are bearer tokens, so only their fingerprint is ever logged.
type SessionStoreAdapter struct {
	pool       *Pool
	logger     domain.Logger
	defaultTTL time.Duration
}

// NewSessionStoreAdapter creates a session store. A nil pool yields a store whose
// every operation fails with domain.ErrPoolUninitialized. defaultTTL <= 0 means
// domain.DefaultSessionTTL.
func NewSessionStoreAdapter(pool *Pool, logger domain.Logger, defaultTTL time.Duration) *SessionStoreAdapter {
	if logger == nil {
		panic("logger cannot be nil in NewSessionStoreAdapter")
	}
	if defaultTTL <= 0 {
		defaultTTL = domain.DefaultSessionTTL
	}
	return &SessionStoreAdapter{
		pool:       pool,
		logger:     logger,
		defaultTTL: defaultTTL,
	}
}

var _ domain.SessionStore = (*SessionStoreAdapter)(nil)

// Set writes key=value with an explicit expiry choice.
func (s *SessionStoreAdapter) Set(ctx context.Context, key, value string, expiry domain.Expiry) error {
	var ttl time.Duration
	switch {
	case expiry.IsZero():
		return fmt.Errorf("%w: expiry must be chosen explicitly", domain.ErrInvalidTTL)
	case expiry.Never():
		ttl = 0 // redis SET without EX/PX
	default:
		d, _ := expiry.TTL()
		if d <= 0 {
			return fmt.Errorf("%w: ttl must be positive, got %s", domain.ErrInvalidTTL, d)
		}
		ttl = d
	}
	return s.set(ctx, key, value, ttl)
}

// SetLogin writes a login session; the zero Expiry means the configured default TTL.
// Login sessions always expire.
func (s *SessionStoreAdapter) SetLogin(ctx context.Context, key, value string, expiry domain.Expiry) error {
	if expiry.IsZero() {
		return s.set(ctx, key, value, s.defaultTTL)
	}
	if expiry.Never() {
		return fmt.Errorf("%w: login sessions must expire", domain.ErrInvalidTTL)
	}
	return s.Set(ctx, key, value, expiry)
}

func (s *SessionStoreAdapter) set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.pool.With(ctx, func(ctx context.Context, conn *redis.Conn) error {
		return conn.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		s.logger.Error(ctx, "Cache SET failed", "key_fp", crypto.Fingerprint(key), "ttl", ttl.String(), "error", err.Error())
		return fmt.Errorf("cache SET failed: %w", err)
	}
	return nil
}

// Get returns the stored value; absent and expired keys both report false.
func (s *SessionStoreAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := s.pool.With(ctx, func(ctx context.Context, conn *redis.Conn) error {
		var err error
		val, err = conn.Get(ctx, key).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error(ctx, "Cache GET failed", "key_fp", crypto.Fingerprint(key), "error", err.Error())
		return "", false, fmt.Errorf("cache GET failed: %w", err)
	}
	return val, true, nil
}

// Delete removes the key and reports how many keys were removed.
func (s *SessionStoreAdapter) Delete(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.pool.With(ctx, func(ctx context.Context, conn *redis.Conn) error {
		var err error
		n, err = conn.Del(ctx, key).Result()
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "Cache DEL failed", "key_fp", crypto.Fingerprint(key), "error", err.Error())
		return 0, fmt.Errorf("cache DEL failed: %w", err)
	}
	return n, nil
}

// Exists reports whether the key is present and unexpired.
func (s *SessionStoreAdapter) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := s.pool.With(ctx, func(ctx context.Context, conn *redis.Conn) error {
		var err error
		n, err = conn.Exists(ctx, key).Result()
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "Cache EXISTS failed", "key_fp", crypto.Fingerprint(key), "error", err.Error())
		return false, fmt.Errorf("cache EXISTS failed: %w", err)
	}
	return n > 0, nil
}

// RefreshTTL resets the expiry of an existing key and never creates one.
func (s *SessionStoreAdapter) RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("%w: ttl must be positive, got %s", domain.ErrInvalidTTL, ttl)
	}
	var ok bool
	err := s.pool.With(ctx, func(ctx context.Context, conn *redis.Conn) error {
		var err error
		ok, err = conn.Expire(ctx, key, ttl).Result()
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "Cache EXPIRE failed", "key_fp", crypto.Fingerprint(key), "error", err.Error())
		return false, fmt.Errorf("cache EXPIRE failed: %w", err)
	}
	return ok, nil
}

// TTL returns the remaining lifetime of key. A key without expiry reports -1ns and true.
func (s *SessionStoreAdapter) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	var d time.Duration
	err := s.pool.With(ctx, func(ctx context.Context, conn *redis.Conn) error {
		var err error
		d, err = conn.TTL(ctx, key).Result()
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "Cache TTL failed", "key_fp", crypto.Fingerprint(key), "error", err.Error())
		return 0, false, fmt.Errorf("cache TTL failed: %w", err)
	}
	switch d {
	case -2:
		return 0, false, nil
	case -1:
		return -1, true, nil
	}
	return d, true, nil
}
