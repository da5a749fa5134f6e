package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/config"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/metrics"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

const (
	defaultAcquireTimeout = 10 * time.Second
	defaultDialTimeout    = 5 * time.Second
)

// PoolOptions configures a cache connection pool.
type PoolOptions struct {
	URL            string
	MaxActive      int
	MinIdle        int
	AcquireTimeout time.Duration // max wait for a free connection, also used as command read/write timeout
	DialTimeout    time.Duration
}

// PoolOptionsFromConfig derives pool options from the redis config section.
func PoolOptionsFromConfig(cfg config.RedisConfig) PoolOptions {
	return PoolOptions{
		URL:            cfg.URL(),
		MaxActive:      cfg.MaxActive,
		MinIdle:        cfg.MinIdle,
		AcquireTimeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		DialTimeout:    time.Duration(cfg.DialTimeoutMs) * time.Millisecond,
	}
}

// Pool is a bounded set of reusable cache connections shared by all requests.
// At most MaxActive connections are leased at any time; a caller that cannot get
// one within AcquireTimeout receives domain.ErrPoolExhausted.
// A nil *Pool behaves as an uninitialized pool.
type Pool struct {
	client         *redis.Client
	sem            *semaphore.Weighted
	maxActive      int
	acquireTimeout time.Duration
	inUse          atomic.Int64
	logger         domain.Logger
}

// NewPool builds the pool. Connections are opened lazily on first use.
func NewPool(opts PoolOptions, logger domain.Logger) (*Pool, error) {
	if logger == nil {
		panic("logger cannot be nil in NewPool")
	}
	if opts.MaxActive <= 0 {
		return nil, fmt.Errorf("cache pool max active must be positive, got %d", opts.MaxActive)
	}
	if opts.MinIdle < 0 || opts.MinIdle > opts.MaxActive {
		return nil, fmt.Errorf("cache pool min idle %d must be within [0,%d]", opts.MinIdle, opts.MaxActive)
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = defaultAcquireTimeout
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache url: %w", err)
	}
	redisOpts.PoolSize = opts.MaxActive
	redisOpts.MinIdleConns = opts.MinIdle
	redisOpts.PoolTimeout = opts.AcquireTimeout
	redisOpts.DialTimeout = opts.DialTimeout
	redisOpts.ReadTimeout = opts.AcquireTimeout
	redisOpts.WriteTimeout = opts.AcquireTimeout
	redisOpts.MaxRetries = -1 // retries are the caller's decision

	return &Pool{
		client:         redis.NewClient(redisOpts),
		sem:            semaphore.NewWeighted(int64(opts.MaxActive)),
		maxActive:      opts.MaxActive,
		acquireTimeout: opts.AcquireTimeout,
		logger:         logger,
	}, nil
}

// Lease is exclusive use of one pooled connection. Release must be called exactly
// once; extra calls are no-ops.
type Lease struct {
	conn *redis.Conn
	pool *Pool
	once sync.Once
}

// Conn returns the leased connection.
func (l *Lease) Conn() *redis.Conn {
	return l.conn
}

// Release returns the connection to the pool.
func (l *Lease) Release() {
	l.once.Do(func() {
		if err := l.conn.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			l.pool.logger.Warn(context.Background(), "Failed to return cache connection to pool", "error", err.Error())
		}
		l.pool.inUse.Add(-1)
		l.pool.sem.Release(1)
		metrics.LeaseReleased()
	})
}

// Acquire leases a connection, waiting at most the acquire timeout or until ctx's
// deadline, whichever comes first. Both end in domain.ErrPoolExhausted; only
// cancellation of ctx is returned as a plain context error.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if p == nil {
		return nil, domain.ErrPoolUninitialized
	}

	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("acquire cache connection: %w", ctx.Err())
		}
		// Either deadline ended the wait with every connection still leased.
		waited := time.Since(start)
		metrics.IncrementPoolExhausted()
		p.logger.Warn(ctx, "Cache pool exhausted",
			"max_active", p.maxActive,
			"waited", waited.String(),
		)
		return nil, fmt.Errorf("%w: no connection after %s: %w", domain.ErrPoolExhausted, waited.Round(time.Millisecond), err)
	}

	p.inUse.Add(1)
	metrics.LeaseAcquired(time.Since(start))
	return &Lease{conn: p.client.Conn(), pool: p}, nil
}

// With leases a connection for the duration of fn and always releases it.
// A pool that cannot supply a connection reports both domain.ErrCacheUnavailable
// and domain.ErrPoolExhausted. Errors returned by fn are classified into the cache error taxonomy, except
// redis.Nil which is passed through untouched for the caller to interpret.
func (p *Pool) With(ctx context.Context, fn func(ctx context.Context, conn *redis.Conn) error) error {
	lease, err := p.Acquire(ctx)
	if errors.Is(err, domain.ErrPoolExhausted) {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	if err != nil {
		return err
	}
	defer lease.Release()

	if err := fn(ctx, lease.Conn()); err != nil {
		if errors.Is(err, redis.Nil) {
			return err
		}
		return classifyError(err)
	}
	return nil
}

// Ping round-trips a PING over a leased connection.
func (p *Pool) Ping(ctx context.Context) error {
	return p.With(ctx, func(ctx context.Context, conn *redis.Conn) error {
		return conn.Ping(ctx).Err()
	})
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	MaxActive int
	InUse     int64
	Client    *redis.PoolStats
}

// Stats returns lease and underlying connection counters.
func (p *Pool) Stats() PoolStats {
	if p == nil {
		return PoolStats{}
	}
	return PoolStats{
		MaxActive: p.maxActive,
		InUse:     p.inUse.Load(),
		Client:    p.client.PoolStats(),
	}
}

// Close closes every pooled connection. Outstanding leases fail on next use.
func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
