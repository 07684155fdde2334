// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Database DatabaseConfig
	Media    MediaConfig
	Web      WebConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type MediaConfig struct {
	Root    string // local directory uploads are written to
	BaseURL string // public URL prefix the stored files are served under
}

type WebConfig struct {
	Host          string
	Port          int
	SessionSecret string // HMAC key for session cookies
	Password      string // shared family password for login
	AllowedOrigin string // CORS origin, empty disables cross-origin access
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Media: MediaConfig{
			Root:    envStr("MEDIA_ROOT", "./media"),
			BaseURL: envStr("MEDIA_BASE_URL", "/media"),
		},
		Web: WebConfig{
			Host:          envStr("HTTP_HOST", "0.0.0.0"),
			Port:          envInt("HTTP_PORT", 8080),
			SessionSecret: os.Getenv("SESSION_SECRET"),
			Password:      os.Getenv("STUDIO_PASSWORD"),
			AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		},
	}
}
