package bootstrap

import (
	"sync"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/config"
	appredis "gitlab.com/timkado/api/staff-auth-service/internal/adapters/redis"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

// CachePoolGuard builds the process-wide cache pool exactly once.
// Concurrent first callers serialize on the guard; one build runs and every
// caller gets the same *Pool. Later calls return that pool and ignore their
// config. A failed build leaves the guard empty so a later call can retry.
type CachePoolGuard struct {
	mu    sync.Mutex
	pool  *appredis.Pool
	build func(appredis.PoolOptions, domain.Logger) (*appredis.Pool, error)
}

func NewCachePoolGuard() *CachePoolGuard {
	return &CachePoolGuard{build: appredis.NewPool}
}

// Initialize returns the pool, building it from cfg on the first successful call.
func (g *CachePoolGuard) Initialize(cfg config.RedisConfig, logger domain.Logger) (*appredis.Pool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pool != nil {
		return g.pool, nil
	}
	p, err := g.build(appredis.PoolOptionsFromConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	g.pool = p
	return p, nil
}

// Pool returns the built pool or domain.ErrPoolUninitialized.
func (g *CachePoolGuard) Pool() (*appredis.Pool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pool == nil {
		return nil, domain.ErrPoolUninitialized
	}
	return g.pool, nil
}

// Close tears the pool down at process exit.
func (g *CachePoolGuard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pool == nil {
		return nil
	}
	err := g.pool.Close()
	g.pool = nil
	return err
}
