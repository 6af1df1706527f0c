// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/client"
	"github.com/justestif/go-lyrics-catalog/internal/web"
)

// ErrInvalidConfig is returned when an environment variable holds an unusable value.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variable names.
const (
	EnvAddr          = "LYRICS_ADDR"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvSessionTTL    = "ADMIN_SESSION_TTL"
	EnvAPIURL        = "LYRICS_API_URL"
	EnvLogLevel      = "LOG_LEVEL"
)

// Config holds server and client configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	Admin       auth.Credentials
	SessionTTL  time.Duration
	APIURL      string
	LogLevel    log.Level
}

// Load reads a .env file from the working directory if one exists, then
// builds the configuration from the environment. Variables already set in
// the environment win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is ignored.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:        getEnv(EnvAddr, web.DefaultAddr),
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		Admin: auth.Credentials{
			Username: os.Getenv(EnvAdminUsername),
			Password: os.Getenv(EnvAdminPassword),
		},
		SessionTTL: auth.DefaultSessionTTL,
		APIURL:     getEnv(EnvAPIURL, client.DefaultBaseURL),
		LogLevel:   log.InfoLevel,
	}

	if raw := os.Getenv(EnvSessionTTL); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("%w: %s=%q is not a positive duration", ErrInvalidConfig, EnvSessionTTL, raw)
		}
		cfg.SessionTTL = ttl
	}

	if raw := os.Getenv(EnvLogLevel); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
