// Package config loads Yatube runtime configuration from defaults, an
// optional YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Media    MediaConfig    `yaml:"media"`
	Logging  LoggingConfig  `yaml:"logging"`
	Limits   RateLimit      `yaml:"rate_limit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig selects the store. An empty DSN means the in-memory store.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// CacheConfig controls the index page cache.
type CacheConfig struct {
	Backend  string        `yaml:"backend" env:"CACHE_BACKEND"` // memory, redis or none
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL"`
}

// AuthConfig controls session tokens.
type AuthConfig struct {
	SecretKey     string        `yaml:"secret_key" env:"SECRET_KEY"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	PurgeSchedule string        `yaml:"purge_schedule" env:"SESSION_PURGE_SCHEDULE"`
	SecureCookies bool          `yaml:"secure_cookies" env:"SECURE_COOKIES"`
}

// MediaConfig controls uploaded image storage.
type MediaConfig struct {
	Root           string `yaml:"root" env:"MEDIA_ROOT"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
}

// LoggingConfig mirrors logger.LoggingConfig.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	Output string `yaml:"output" env:"LOG_OUTPUT"`
}

// RateLimit throttles state-changing requests per client.
type RateLimit struct {
	RequestsPerSecond int `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     20 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL:    14 * 24 * time.Hour,
			PurgeSchedule: "@every 10m",
		},
		Media: MediaConfig{
			Root:           "media",
			MaxUploadBytes: 5 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Limits: RateLimit{
			RequestsPerSecond: 5,
			Burst:             20,
		},
	}
}

// Load reads .env (when present), the YAML file named by YATUBE_CONFIG (when
// set) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(os.Getenv("YATUBE_CONFIG"))
}

// LoadFrom is Load without the .env step. An empty path skips the YAML file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache backend redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Limits.RequestsPerSecond <= 0 || c.Limits.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

// UsesPostgres reports whether a database DSN is configured.
func (c *Config) UsesPostgres() bool {
	return strings.TrimSpace(c.Database.DSN) != ""
}

// UsesSharedCache reports whether pages are cached in redis, where another
// process can reach them.
func (c *Config) UsesSharedCache() bool {
	backend := strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	return c.Cache.RedisURL != "" && c.Cache.TTL > 0 && (backend == "redis" || backend == "memory" || backend == "")
}
