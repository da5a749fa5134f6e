package redis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

// go-redis v9.8 keeps its pool timeout sentinel and reply parse errors in
// internal packages, so they are recognized by their fixed text.
const (
	poolTimeoutMessage = "redis: connection pool timeout"
	unparsableReply    = "redis: can't parse"
)

// classifyError maps a go-redis failure onto the cache error taxonomy.
// redis.Nil must be handled by the caller before classification.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrPoolExhausted),
		errors.Is(err, domain.ErrPoolUninitialized),
		errors.Is(err, domain.ErrCacheUnavailable),
		errors.Is(err, domain.ErrCacheProtocol),
		errors.Is(err, domain.ErrInvalidTTL):
		return err
	case strings.Contains(err.Error(), poolTimeoutMessage):
		return fmt.Errorf("%w: %w: %w", domain.ErrCacheUnavailable, domain.ErrPoolExhausted, err)
	case strings.Contains(err.Error(), unparsableReply):
		return fmt.Errorf("%w: %w", domain.ErrCacheProtocol, err)
	}

	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return fmt.Errorf("%w: %w", domain.ErrCacheProtocol, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
}
