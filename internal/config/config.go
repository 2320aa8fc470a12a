// Package config loads server settings from TRACKLINE_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selected by the database URL scheme.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	DatabaseURL string // TRACKLINE_DATABASE_URL (required; postgres:// or sqlite://path)
	GRPCAddr    string // TRACKLINE_GRPC_ADDR (default ":9090")
	HTTPAddr    string // TRACKLINE_HTTP_ADDR (default ":8080")
	NATSURL     string // TRACKLINE_NATS_URL (optional, empty = no events)
	AuthToken   string // TRACKLINE_AUTH_TOKEN (optional, empty = auth disabled)

	LogLevel  slog.Level // TRACKLINE_LOG_LEVEL (debug|info|warn|error, default info)
	LogFormat string     // TRACKLINE_LOG_FORMAT (text|json, default text)

	// Export sync
	SyncInterval   time.Duration // TRACKLINE_SYNC_INTERVAL (default 0 = disabled)
	SyncS3Bucket   string        // TRACKLINE_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // TRACKLINE_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // TRACKLINE_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // TRACKLINE_SYNC_S3_KEY (default "trackline/export.jsonl")
	SyncS3Daily    bool          // TRACKLINE_SYNC_S3_DAILY (keep one snapshot per UTC day)
	SyncGitRepo    string        // TRACKLINE_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // TRACKLINE_SYNC_GIT_FILE (default "trackline.jsonl")
	SyncGitBranch  string        // TRACKLINE_SYNC_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("TRACKLINE_DATABASE_URL"),
		GRPCAddr:       envOrDefault("TRACKLINE_GRPC_ADDR", ":9090"),
		HTTPAddr:       envOrDefault("TRACKLINE_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("TRACKLINE_NATS_URL"),
		AuthToken:      os.Getenv("TRACKLINE_AUTH_TOKEN"),
		LogFormat:      envOrDefault("TRACKLINE_LOG_FORMAT", "text"),
		SyncS3Bucket:   os.Getenv("TRACKLINE_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("TRACKLINE_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("TRACKLINE_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("TRACKLINE_SYNC_S3_KEY", "trackline/export.jsonl"),
		SyncGitRepo:    os.Getenv("TRACKLINE_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("TRACKLINE_SYNC_GIT_FILE", "trackline.jsonl"),
		SyncGitBranch:  envOrDefault("TRACKLINE_SYNC_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TRACKLINE_DATABASE_URL is required")
	}
	if _, _, err := ParseDatabaseURL(c.DatabaseURL); err != nil {
		return nil, fmt.Errorf("TRACKLINE_DATABASE_URL: %w", err)
	}

	if err := c.LogLevel.UnmarshalText([]byte(envOrDefault("TRACKLINE_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("TRACKLINE_LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("TRACKLINE_LOG_FORMAT: must be text or json, got %q", c.LogFormat)
	}

	if s := os.Getenv("TRACKLINE_SYNC_S3_DAILY"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("TRACKLINE_SYNC_S3_DAILY: %w", err)
		}
		c.SyncS3Daily = b
	}

	if s := os.Getenv("TRACKLINE_SYNC_INTERVAL"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("TRACKLINE_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

// ParseDatabaseURL splits a database URL into a backend name and the DSN
// the backend expects. Postgres URLs are passed through unchanged; sqlite
// URLs yield the file path.
func ParseDatabaseURL(raw string) (backend, dsn string, err error) {
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return BackendPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL needs a file path")
		}
		return BackendSQLite, path, nil
	default:
		return "", "", fmt.Errorf("unsupported scheme in %q (want postgres:// or sqlite://)", raw)
	}
}

// NewLogger builds the process logger described by the config.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
