package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "STAFF_AUTH"

// ServerConfig holds server-related configurations.
// Note: Fields should be exported (start with uppercase) to be unmarshalled by Viper.
type ServerConfig struct {
	HTTPPort int `mapstructure:"http_port"`
}

// RedisConfig holds the cache connection and pool settings.
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"` // Optional
	DB            int    `mapstructure:"db"`
	MaxActive     int    `mapstructure:"max_active"` // Hard cap on concurrently leased connections
	MinIdle       int    `mapstructure:"min_idle"`
	TimeoutMs     int    `mapstructure:"timeout_ms"` // Acquire wait and per-command timeout
	DialTimeoutMs int    `mapstructure:"dial_timeout_ms"`
}

// URL renders the connection URL in the form redis://[:password@]host:port/db.
func (r RedisConfig) URL() string {
	u := url.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(r.Host, strconv.Itoa(r.Port)),
		Path:   "/" + strconv.Itoa(r.DB),
	}
	if r.Password != "" {
		u.User = url.UserPassword("", r.Password)
	}
	return u.String()
}

// DatabaseConfig holds the relational store settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"` // Should primarily come from ENV
	MaxConns               int    `mapstructure:"max_conns"`
	MinConns               int    `mapstructure:"min_conns"`
	ConnMaxLifetimeSeconds int    `mapstructure:"conn_max_lifetime_seconds"`
	TimeoutSeconds         int    `mapstructure:"timeout_seconds"`
}

// LogConfig holds logging-related configurations.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AuthConfig holds token, session and password hashing settings.
type AuthConfig struct {
	JWTSecret             string `mapstructure:"jwt_secret"` // Should primarily come from ENV
	TokenExpirySeconds    int    `mapstructure:"token_expiry_seconds"`
	SessionTTLSeconds     int    `mapstructure:"session_ttl_seconds"`
	BcryptCost            int    `mapstructure:"bcrypt_cost"`
	StrictSessionCheck    bool   `mapstructure:"strict_session_check"`
	SessionWriteRetries   int    `mapstructure:"session_write_retries"`
	SessionWriteTimeoutMs int    `mapstructure:"session_write_timeout_ms"`
}

// NATSConfig holds the login audit publisher settings. An empty URL disables publishing.
type NATSConfig struct {
	URL          string `mapstructure:"url"`
	AuditSubject string `mapstructure:"audit_subject"`
}

// AppConfig holds application-specific configurations.
type AppConfig struct {
	ServiceName             string `mapstructure:"service_name"`
	Version                 string `mapstructure:"version"`
	ShutdownTimeoutSeconds  int    `mapstructure:"shutdown_timeout_seconds"`
	EmployeeCacheSize       int    `mapstructure:"employee_cache_size"`
	EmployeeCacheTTLSeconds int    `mapstructure:"employee_cache_ttl_seconds"`
	HashConcurrency         int    `mapstructure:"hash_concurrency"` // 0 means GOMAXPROCS
}

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	NATS     NATSConfig     `mapstructure:"nats"`
	App      AppConfig      `mapstructure:"app"`
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Redis.Host) == "" {
		errs = append(errs, errors.New("redis.host must not be empty"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("redis.port %d is out of range", c.Redis.Port))
	}
	if c.Redis.MaxActive <= 0 {
		errs = append(errs, errors.New("redis.max_active must be positive"))
	}
	if c.Redis.MinIdle < 0 || c.Redis.MinIdle > c.Redis.MaxActive {
		errs = append(errs, errors.New("redis.min_idle must be between 0 and redis.max_active"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must not be empty"))
	}
	if c.Auth.TokenExpirySeconds <= 0 {
		errs = append(errs, errors.New("auth.token_expiry_seconds must be positive"))
	}
	if c.Auth.SessionTTLSeconds < 0 {
		errs = append(errs, errors.New("auth.session_ttl_seconds must not be negative"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url must not be empty"))
	}
	return errors.Join(errs...)
}

// Provider defines an interface for accessing application configuration.
// This allows for easy mocking in tests and decouples the app from Viper.
type Provider interface {
	Get() *Config
}

// StaticProvider serves a fixed configuration. Used by tests and tools.
type StaticProvider struct {
	Config *Config
}

// Get returns the wrapped configuration.
func (s StaticProvider) Get() *Config {
	return s.Config
}

// viperProvider implements the Provider interface using Viper.
type viperProvider struct {
	config atomic.Pointer[Config]
	logger *zap.Logger // zap directly, the domain logger depends on this provider
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_active", 200)
	v.SetDefault("redis.min_idle", 10)
	v.SetDefault("redis.timeout_ms", 10000)
	v.SetDefault("redis.dial_timeout_ms", 5000)
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime_seconds", 1800)
	v.SetDefault("database.timeout_seconds", 5)
	v.SetDefault("auth.token_expiry_seconds", 28800)
	v.SetDefault("auth.session_ttl_seconds", 28800)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.strict_session_check", true)
	v.SetDefault("auth.session_write_retries", 1)
	v.SetDefault("auth.session_write_timeout_ms", 2000)
	v.SetDefault("log.level", "info")
	v.SetDefault("nats.audit_subject", "staff.auth.login")
	v.SetDefault("app.service_name", "staff-auth-service")
	v.SetDefault("app.shutdown_timeout_seconds", 15)
	v.SetDefault("app.employee_cache_size", 1024)
	v.SetDefault("app.employee_cache_ttl_seconds", 300)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(getEnv("VIPER_CONFIG_NAME", "config"))
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnv("VIPER_CONFIG_PATH", "/app/config"))
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")) // e.g., auth.jwt_secret becomes STAFF_AUTH_AUTH_JWT_SECRET
	return v
}

// Load reads configuration once from file and environment, without reload hooks.
func Load(logger *zap.Logger) (*Config, error) {
	v := newViper()
	return readConfig(v, logger)
}

func readConfig(v *viper.Viper, logger *zap.Logger) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.Warn("Config file not found; relying on defaults and environment variables", zap.Error(err))
		} else {
			logger.Error("Failed to read config file", zap.Error(err))
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		logger.Error("Failed to unmarshal config", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewViperProvider loads configuration from file and environment variables and
// keeps it current on SIGHUP and on config file changes.
// A reload that fails to parse or validate keeps the previous configuration.
// appCtx is the application lifecycle context used to stop the reload goroutine.
func NewViperProvider(appCtx context.Context, logger *zap.Logger) (Provider, error) {
	v := newViper()
	cfg, err := readConfig(v, logger)
	if err != nil {
		return nil, err
	}

	p := &viperProvider{logger: logger}
	p.config.Store(cfg)

	reload := func(source string) {
		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			p.logger.Error("Failed to unmarshal reloaded config", zap.String("source", source), zap.Error(err))
			return
		}
		if err := newCfg.Validate(); err != nil {
			p.logger.Error("Reloaded config is invalid; keeping previous", zap.String("source", source), zap.Error(err))
			return
		}
		p.config.Store(newCfg)
		p.logger.Info("Configuration reloaded successfully", zap.String("source", source))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Panic recovered in SIGHUP handler goroutine",
					zap.String("goroutine_name", "SIGHUPConfigReloader"),
					zap.Any("panic_info", r),
					zap.String("stacktrace", string(debug.Stack())),
				)
			}
		}()
		defer signal.Stop(sigChan)
		for {
			select {
			case sig := <-sigChan:
				p.logger.Info("SIGHUP received, attempting to reload configuration...", zap.String("signal", sig.String()))
				if err := v.ReadInConfig(); err != nil {
					p.logger.Error("Failed to re-read config file on SIGHUP", zap.Error(err))
					continue
				}
				reload("sighup")
			case <-appCtx.Done():
				return
			}
		}
	}()

	v.OnConfigChange(func(e fsnotify.Event) {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Panic recovered in OnConfigChange callback",
					zap.String("event_name", e.Name),
					zap.Any("panic_info", r),
					zap.String("stacktrace", string(debug.Stack())),
				)
			}
		}()
		p.logger.Info("Config file changed", zap.String("name", e.Name), zap.String("op", e.Op.String()))
		reload("fsnotify")
	})
	if v.ConfigFileUsed() != "" {
		v.WatchConfig()
	}

	p.logger.Info("Configuration loaded successfully", zap.String("config_file_used", v.ConfigFileUsed()))
	return p, nil
}

// Get returns the current configuration.
func (p *viperProvider) Get() *Config {
	return p.config.Load()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
