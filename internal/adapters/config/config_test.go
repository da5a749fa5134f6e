package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig() *Config {
	return &Config{
		Redis:    RedisConfig{Host: "127.0.0.1", Port: 6379, MaxActive: 10, MinIdle: 1},
		Database: DatabaseConfig{URL: "postgres://localhost/staff"},
		Auth:     AuthConfig{JWTSecret: "s3cret", TokenExpirySeconds: 60},
	}
}

func TestRedisConfigURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  RedisConfig
		want string
	}{
		{"no password", RedisConfig{Host: "cache", Port: 6379, DB: 0}, "redis://cache:6379/0"},
		{"with password", RedisConfig{Host: "cache", Port: 6380, DB: 3, Password: "pw"}, "redis://:pw@cache:6380/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.URL())
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty host", func(c *Config) { c.Redis.Host = " " }, "redis.host"},
		{"zero port", func(c *Config) { c.Redis.Port = 0 }, "redis.port"},
		{"no pool", func(c *Config) { c.Redis.MaxActive = 0 }, "redis.max_active"},
		{"idle above max", func(c *Config) { c.Redis.MinIdle = 11 }, "redis.min_idle"},
		{"no secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
		{"no expiry", func(c *Config) { c.Auth.TokenExpirySeconds = 0 }, "auth.token_expiry_seconds"},
		{"no database", func(c *Config) { c.Database.URL = "" }, "database.url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
redis:
  host: cache.internal
  port: 6380
  max_active: 50
database:
  url: postgres://db/staff
auth:
  jwt_secret: from-file
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("VIPER_CONFIG_NAME", "config")
	t.Setenv("VIPER_CONFIG_PATH", dir)
	t.Setenv("STAFF_AUTH_AUTH_JWT_SECRET", "from-env")

	cfg, err := Load(zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, 50, cfg.Redis.MaxActive)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 28800, cfg.Auth.SessionTTLSeconds, "default applies")
	assert.True(t, cfg.Auth.StrictSessionCheck)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("VIPER_CONFIG_NAME", "does-not-exist")
	t.Setenv("VIPER_CONFIG_PATH", t.TempDir())

	_, err := Load(zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}
