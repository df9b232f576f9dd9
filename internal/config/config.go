// Package config loads server configuration from defaults, an optional TOML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	AI      AIConfig      `toml:"ai"`
	Auth    AuthConfig    `toml:"auth"`
	Preview PreviewConfig `toml:"preview"`
}

type ServerConfig struct {
	Addr                string `toml:"addr"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	AllowedOrigins      string `toml:"allowed_origins"`
	Development         bool   `toml:"development"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StorageConfig struct {
	Driver        string `toml:"driver"`
	SQLiteDir     string `toml:"sqlite_dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

type CacheConfig struct {
	RedisURL   string `toml:"redis_url"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

type PreviewConfig struct {
	IdleTimeoutMinutes int `toml:"idle_timeout_minutes"`
	// Origin serves preview surfaces and public projects, e.g.
	// https://preview.example.com. Empty serves them from the app host.
	Origin string `toml:"origin"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 90,
			AllowedOrigins:      "*",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			MongoDatabase: "webgenie",
		},
		Cache: CacheConfig{
			TTLMinutes: 60,
		},
		AI: DefaultAIConfig(),
		Auth: AuthConfig{
			TokenTTLHours: 24 * 7,
		},
		Preview: PreviewConfig{
			IdleTimeoutMinutes: 30,
		},
	}
}

// Load reads the configuration like Read and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads the TOML file at path (skipped when path is empty) on top of the
// defaults and applies environment overrides. The result is not validated;
// commands that need only part of it check that part themselves.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "WEBGENIE_ADDR")
	setBool(&c.Server.Development, "WEBGENIE_DEV")
	setInt(&c.Server.WriteTimeoutSeconds, "WEBGENIE_WRITE_TIMEOUT")
	setString(&c.Server.AllowedOrigins, "CORS_ALLOWED_ORIGINS")
	setString(&c.Preview.Origin, "WEBGENIE_PREVIEW_ORIGIN")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.SQLiteDir, "SQLITE_DIR")
	setString(&c.Storage.MongoURI, "MONGO_URI")
	setString(&c.Storage.MongoDatabase, "MONGO_DATABASE")
	setString(&c.Cache.RedisURL, "REDIS_URL")
	setString(&c.AI.APIKey, "GEMINI_API_KEY")
	setString(&c.AI.Model, "GEMINI_MODEL")
	setString(&c.AI.BaseURL, "GEMINI_BASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			errs = append(errs, fmt.Errorf("%w: storage.mongo_uri is required for the mongo driver", ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver))
	}

	if c.Auth.JWTSecret == "" && !c.Server.Development {
		errs = append(errs, fmt.Errorf("%w: auth.jwt_secret (JWT_SECRET) is required", ErrInvalidConfig))
	}
	if c.Auth.TokenTTLHours <= 0 {
		errs = append(errs, fmt.Errorf("%w: auth.token_ttl_hours must be positive", ErrInvalidConfig))
	}
	if c.AI.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("%w: ai.requests_per_minute must be positive", ErrInvalidConfig))
	}
	if c.WriteTimeout() > 0 && c.WriteTimeout() <= c.AI.Timeout() {
		errs = append(errs, fmt.Errorf("%w: server.write_timeout_seconds must exceed ai.timeout_ms", ErrInvalidConfig))
	}
	if c.Preview.Origin != "" {
		if u, err := url.Parse(c.Preview.Origin); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: preview.origin must be an http(s) origin", ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func (c *Config) PreviewIdleTimeout() time.Duration {
	return time.Duration(c.Preview.IdleTimeoutMinutes) * time.Minute
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
