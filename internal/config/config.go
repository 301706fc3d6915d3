// Package config loads service configuration from .env.local and the
// environment using Viper.
package config

import (
	"strings"
	"time"

	"github.com/WaveLink/WL-Backend/internal/storage"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvProduction = "production"

	// DevSecretKey signs session cookies when SECRET_KEY is unset outside
	// production.
	DevSecretKey = "wavelink-secret-key-change-this"
)

// Config holds the service configuration.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// SecretKey signs the session cookie.
	SecretKey         string        `mapstructure:"SECRET_KEY"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`
	CookieSecure      bool          `mapstructure:"COOKIE_SECURE"`
	BcryptCost        int           `mapstructure:"BCRYPT_COST"`

	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// Object storage (S3-compatible endpoint of the hosted backend). When
	// StorageEndpoint is empty an in-memory store is used.
	StorageEndpoint        string `mapstructure:"STORAGE_ENDPOINT"`
	StorageRegion          string `mapstructure:"STORAGE_REGION"`
	StorageAccessKeyID     string `mapstructure:"STORAGE_ACCESS_KEY_ID"`
	StorageSecretAccessKey string `mapstructure:"STORAGE_SECRET_ACCESS_KEY"`
	StorageBucket          string `mapstructure:"STORAGE_BUCKET"`
	StoragePublicBaseURL   string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`

	// SignedURLTTL is the lifetime of signed URLs stored with incident
	// reports. DownloadURLTTL is used for on-demand download redirects.
	SignedURLTTL   time.Duration `mapstructure:"SIGNED_URL_TTL"`
	DownloadURLTTL time.Duration `mapstructure:"DOWNLOAD_URL_TTL"`

	// DefaultTerminalID is recorded on incidents reported by employees with
	// no terminal assignment.
	DefaultTerminalID string `mapstructure:"DEFAULT_TERMINAL_ID"`
}

// Load reads .env.local (if present) and builds Config from the environment.
// Environment variables override values from the file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5050")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "wavelink_session")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_ACCESS_KEY_ID", "")
	v.SetDefault("STORAGE_SECRET_ACCESS_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "pdfs")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "")
	v.SetDefault("SIGNED_URL_TTL", "168h")
	v.SetDefault("DOWNLOAD_URL_TTL", "10m")
	v.SetDefault("DEFAULT_TERMINAL_ID", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if cfg.SecretKey == "" && cfg.Env != EnvProduction {
		cfg.SecretKey = DevSecretKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	if c.SecretKey == "" {
		return errors.New("config: SECRET_KEY must be set in production")
	}
	if c.Env == EnvProduction && c.SecretKey == DevSecretKey {
		return errors.New("config: SECRET_KEY must not use the development default in production")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.StorageBucket == "" {
		return errors.New("config: STORAGE_BUCKET must be set")
	}
	if c.SignedURLTTL <= 0 || c.SignedURLTTL > storage.MaxPresignTTL {
		return errors.Errorf("config: SIGNED_URL_TTL must be between 0 and %s", storage.MaxPresignTTL)
	}
	if c.DownloadURLTTL <= 0 || c.DownloadURLTTL > storage.MaxPresignTTL {
		return errors.Errorf("config: DOWNLOAD_URL_TTL must be between 0 and %s", storage.MaxPresignTTL)
	}
	if c.StorageEndpoint != "" && (c.StorageAccessKeyID == "" || c.StorageSecretAccessKey == "") {
		return errors.New("config: STORAGE_ACCESS_KEY_ID and STORAGE_SECRET_ACCESS_KEY are required with STORAGE_ENDPOINT")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// Origins returns the CORS allow-list with blanks removed.
func (c *Config) Origins() []string {
	out := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
