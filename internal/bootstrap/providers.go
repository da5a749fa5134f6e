package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/config"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/logger"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/middleware"
	appnats "gitlab.com/timkado/api/staff-auth-service/internal/adapters/nats"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/postgres"
	appredis "gitlab.com/timkado/api/staff-auth-service/internal/adapters/redis"
	"gitlab.com/timkado/api/staff-auth-service/internal/application"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

// BearerAuthMiddleware is a distinct type so Wire can tell it apart from other middlewares.
type BearerAuthMiddleware func(http.Handler) http.Handler

// InitialZapLoggerProvider provides a basic *zap.Logger for config initialization.
func InitialZapLoggerProvider() (*zap.Logger, func(), error) {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewExample()
		fmt.Fprintf(os.Stderr, "Failed to create initial zap logger, falling back to example logger: %v\n", err)
	}
	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

// ConfigProvider provides the application configuration, reloading it until appCtx ends.
func ConfigProvider(appCtx context.Context, logger *zap.Logger) (config.Provider, error) {
	return config.NewViperProvider(appCtx, logger)
}

// LoggerProvider provides the application logger.
func LoggerProvider(cfgProvider config.Provider) (domain.Logger, error) {
	return logger.NewZapAdapter(cfgProvider, cfgProvider.Get().App.ServiceName)
}

// HTTPServeMuxProvider provides the main HTTP multiplexer.
func HTTPServeMuxProvider() *http.ServeMux {
	return http.NewServeMux()
}

// HTTPGracefulServerProvider provides the HTTP server.
func HTTPGracefulServerProvider(cfgProvider config.Provider, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfgProvider.Get().Server.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second, // login may wait for a hashing slot and a cache lease
		IdleTimeout:       60 * time.Second,
	}
}

// CachePoolProvider initializes the process-wide cache pool through guard and
// fails startup if the cache does not answer a PING.
func CachePoolProvider(guard *CachePoolGuard, cfgProvider config.Provider, appLogger domain.Logger) (*appredis.Pool, func(), error) {
	redisCfg := cfgProvider.Get().Redis
	pool, err := guard.Initialize(redisCfg, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build cache pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		appLogger.Error(ctx, "Failed to connect to cache", "host", redisCfg.Host, "port", redisCfg.Port, "error", err.Error())
		_ = guard.Close()
		return nil, nil, fmt.Errorf("failed to connect to cache at %s:%d: %w", redisCfg.Host, redisCfg.Port, err)
	}

	cleanup := func() {
		if err := guard.Close(); err != nil {
			appLogger.Warn(context.Background(), "Cache pool close failed", "error", err.Error())
			return
		}
		appLogger.Info(context.Background(), "Cache pool closed")
	}
	appLogger.Info(ctx, "Cache pool ready", "host", redisCfg.Host, "port", redisCfg.Port, "max_active", redisCfg.MaxActive)
	return pool, cleanup, nil
}

// SessionStoreProvider provides the session store on top of the cache pool.
func SessionStoreProvider(pool *appredis.Pool, cfgProvider config.Provider, appLogger domain.Logger) domain.SessionStore {
	ttl := time.Duration(cfgProvider.Get().Auth.SessionTTLSeconds) * time.Second
	return appredis.NewSessionStoreAdapter(pool, appLogger, ttl)
}

// DatabaseProvider opens the PostgreSQL connection pool.
func DatabaseProvider(cfgProvider config.Provider, appLogger domain.Logger) (*sql.DB, func(), error) {
	db, err := postgres.Open(context.Background(), cfgProvider.Get().Database)
	if err != nil {
		appLogger.Error(context.Background(), "Failed to connect to database", "error", err.Error())
		return nil, nil, err
	}
	cleanup := func() {
		db.Close()
		appLogger.Info(context.Background(), "Database connection closed")
	}
	return db, cleanup, nil
}

func AccountRepositoryProvider(db *sql.DB) domain.AccountRepository {
	return postgres.NewAccountRepository(db)
}

func EmployeeRepositoryProvider(db *sql.DB) domain.EmployeeRepository {
	return postgres.NewEmployeeRepository(db)
}

// CredentialVerifierProvider provides the bcrypt verifier.
func CredentialVerifierProvider(cfgProvider config.Provider) (domain.CredentialVerifier, error) {
	cfg := cfgProvider.Get()
	return application.NewBcryptVerifier(cfg.Auth.BcryptCost, cfg.App.HashConcurrency)
}

// TokenIssuerProvider provides the JWT issuer.
func TokenIssuerProvider(cfgProvider config.Provider) (domain.TokenIssuer, error) {
	cfg := cfgProvider.Get()
	return application.NewJWTIssuer(cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenExpirySeconds)*time.Second,
		application.WithIssuer(cfg.App.ServiceName),
	)
}

// AuditPublisherProvider provides the NATS login audit publisher.
func AuditPublisherProvider(ctx context.Context, cfgProvider config.Provider, appLogger domain.Logger) (domain.AuditPublisher, func(), error) {
	return appnats.NewAuditPublisher(ctx, cfgProvider, appLogger)
}

// AuthServiceProvider provides the AuthService.
func AuthServiceProvider(
	appLogger domain.Logger,
	cfgProvider config.Provider,
	accounts domain.AccountRepository,
	sessions domain.SessionStore,
	tokens domain.TokenIssuer,
	verifier domain.CredentialVerifier,
	audit domain.AuditPublisher,
) *application.AuthService {
	return application.NewAuthService(appLogger, cfgProvider, accounts, sessions, tokens, verifier, audit)
}

func UserServiceProvider(appLogger domain.Logger, accounts domain.AccountRepository, verifier domain.CredentialVerifier) *application.UserService {
	return application.NewUserService(appLogger, accounts, verifier)
}

func EmployeeServiceProvider(appLogger domain.Logger, cfgProvider config.Provider, repo domain.EmployeeRepository) *application.EmployeeService {
	appCfg := cfgProvider.Get().App
	return application.NewEmployeeService(appLogger, repo, appCfg.EmployeeCacheSize,
		time.Duration(appCfg.EmployeeCacheTTLSeconds)*time.Second)
}

// BearerAuthMiddlewareProvider provides the session check for authenticated routes.
func BearerAuthMiddlewareProvider(authService *application.AuthService, appLogger domain.Logger) BearerAuthMiddleware {
	return middleware.BearerAuthMiddleware(authService, appLogger)
}

// ProviderSet is the Wire provider set for the whole application.
var ProviderSet = wire.NewSet(
	InitialZapLoggerProvider,
	ConfigProvider,
	LoggerProvider,
	HTTPServeMuxProvider,
	HTTPGracefulServerProvider,
	NewCachePoolGuard,
	CachePoolProvider,
	SessionStoreProvider,
	DatabaseProvider,
	AccountRepositoryProvider,
	EmployeeRepositoryProvider,
	CredentialVerifierProvider,
	TokenIssuerProvider,
	AuditPublisherProvider,
	AuthServiceProvider,
	UserServiceProvider,
	EmployeeServiceProvider,
	BearerAuthMiddlewareProvider,
	NewApp,
)
