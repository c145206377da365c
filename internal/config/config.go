// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Cache    CacheConfig
	CORS     CORSConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 5001)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"5001"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// SourceConfig describes the CSV file and how to read it.
type SourceConfig struct {
	// Path is the CSV location (default: relatorio_operadoras_ativas.csv)
	Path string `env:"SOURCE_PATH" envAlt:"CSV_FILE_PATH" default:"relatorio_operadoras_ativas.csv"`

	// Delimiter is the single-character field separator (default: ;)
	Delimiter string `env:"SOURCE_DELIMITER" default:";"`

	// Encodings is the ordered list of candidate encodings
	Encodings []string `env:"SOURCE_ENCODINGS" default:"utf-8,latin-1,iso-8859-1"`

	// InferTypes converts all-numeric and all-boolean columns (default: true)
	InferTypes bool `env:"SOURCE_INFER_TYPES" default:"true"`

	// Lenient keeps trying encodings after a structural parse error (default: false)
	Lenient bool `env:"SOURCE_LENIENT" default:"false"`

	// MaxFileSize is the maximum source size in bytes (default: 100MB)
	MaxFileSize int64 `env:"SOURCE_MAX_FILE_SIZE" default:"104857600"`
}

// CacheConfig holds dataset cache lifecycle settings.
type CacheConfig struct {
	// Preload loads the dataset at startup instead of on the first request (default: false)
	Preload bool `env:"CACHE_PRELOAD" default:"false"`

	// ReloadEnabled mounts POST /api/operadoras/reload (default: false)
	ReloadEnabled bool `env:"CACHE_RELOAD_ENABLED" default:"false"`
}

// CORSConfig holds cross-origin settings for the API.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated origin list (default: *)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"*"`

	// MaxAge is the preflight cache duration in seconds (default: 300)
	MaxAge int `env:"CORS_MAX_AGE" default:"300"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// Burst is the number of requests allowed at once (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File is a log file path; empty logs to stdout
	File string `env:"LOG_FILE"`

	// FileMaxSizeMB is the size at which the log file rotates (default: 100)
	FileMaxSizeMB int `env:"LOG_FILE_MAX_SIZE_MB" default:"100"`

	// FileMaxBackups is the number of rotated files kept (default: 5)
	FileMaxBackups int `env:"LOG_FILE_MAX_BACKUPS" default:"5"`

	// FileMaxAgeDays is how long rotated files are kept (default: 28)
	FileMaxAgeDays int `env:"LOG_FILE_MAX_AGE_DAYS" default:"28"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled mounts the metrics endpoint (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is the metrics route (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DelimiterRune returns the configured delimiter as a rune.
// Validate guarantees it is exactly one character.
func (c *SourceConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}
