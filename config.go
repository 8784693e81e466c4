package threadly

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBackendURL     = "https://threadly-backend-vmvj.onrender.com"
	defaultRequestTimeout = 10 * time.Second
	defaultStoragePath    = "threadly.db"
)

// EnvConfig implements Config from environment variables, reading an optional
// .env file first. Recognized variables: THREADLY_API_URL, THREADLY_BACKEND_URL,
// THREADLY_STORAGE_PATH, THREADLY_TIMEOUT_SECONDS.
type EnvConfig struct {
	BaseURL        string
	BackendURL     string
	StoragePath    string
	RequestTimeout time.Duration
}

// LoadConfig builds an EnvConfig with defaults for anything unset.
func LoadConfig() *EnvConfig {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		BackendURL:     envOr("THREADLY_BACKEND_URL", defaultBackendURL),
		StoragePath:    envOr("THREADLY_STORAGE_PATH", defaultStoragePath),
		RequestTimeout: defaultRequestTimeout,
	}
	cfg.BaseURL = envOr("THREADLY_API_URL", cfg.BackendURL+"/api")

	if raw := os.Getenv("THREADLY_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

func (c *EnvConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c *EnvConfig) GetBackendURL() string {
	return c.BackendURL
}

func (c *EnvConfig) GetStoragePath() string {
	return c.StoragePath
}

func (c *EnvConfig) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}

var _ Config = (*EnvConfig)(nil)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
