package config

import (
	"log/slog"
	"testing"
	"time"
)

var allEnvVars = []string{
	"TRACKLINE_DATABASE_URL", "TRACKLINE_GRPC_ADDR", "TRACKLINE_HTTP_ADDR",
	"TRACKLINE_NATS_URL", "TRACKLINE_AUTH_TOKEN", "TRACKLINE_LOG_LEVEL", "TRACKLINE_LOG_FORMAT",
	"TRACKLINE_SYNC_INTERVAL", "TRACKLINE_SYNC_S3_BUCKET", "TRACKLINE_SYNC_S3_ENDPOINT",
	"TRACKLINE_SYNC_S3_REGION", "TRACKLINE_SYNC_S3_KEY", "TRACKLINE_SYNC_S3_DAILY", "TRACKLINE_SYNC_GIT_REPO",
	"TRACKLINE_SYNC_GIT_FILE", "TRACKLINE_SYNC_GIT_BRANCH",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantGRPCAddr string
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:    "UnsupportedScheme",
			env:     map[string]string{"TRACKLINE_DATABASE_URL": "mysql://localhost/trackline"},
			wantErr: true,
		},
		{
			name:         "DefaultAddresses",
			env:          map[string]string{"TRACKLINE_DATABASE_URL": "postgres://localhost/trackline"},
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"TRACKLINE_DATABASE_URL": "sqlite:///var/lib/trackline.db",
				"TRACKLINE_GRPC_ADDR":    ":5050",
				"TRACKLINE_HTTP_ADDR":    ":3000",
				"TRACKLINE_NATS_URL":     "nats://localhost:4222",
			},
			wantGRPCAddr: ":5050",
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
		{
			name: "BadLogLevel",
			env: map[string]string{
				"TRACKLINE_DATABASE_URL": "postgres://localhost/trackline",
				"TRACKLINE_LOG_LEVEL":    "verbose",
			},
			wantErr: true,
		},
		{
			name: "BadLogFormat",
			env: map[string]string{
				"TRACKLINE_DATABASE_URL": "postgres://localhost/trackline",
				"TRACKLINE_LOG_FORMAT":   "xml",
			},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["TRACKLINE_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["TRACKLINE_DATABASE_URL"])
			}
			if cfg.GRPCAddr != tc.wantGRPCAddr {
				t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, tc.wantGRPCAddr)
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
		})
	}
}

func TestLoadLogging(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TRACKLINE_DATABASE_URL", "postgres://localhost/trackline")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Errorf("defaults = %v/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}

	t.Setenv("TRACKLINE_LOG_LEVEL", "DEBUG")
	t.Setenv("TRACKLINE_LOG_FORMAT", "json")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
		t.Errorf("got %v/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.NewLogger() == nil {
		t.Fatal("NewLogger returned nil")
	}
}

func TestLoadSyncDefaults(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TRACKLINE_DATABASE_URL", "postgres://localhost/trackline")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("SyncInterval = %v, want 0 (disabled)", cfg.SyncInterval)
	}
	if cfg.SyncS3Region != "us-east-1" {
		t.Errorf("SyncS3Region = %q, want %q", cfg.SyncS3Region, "us-east-1")
	}
	if cfg.SyncS3Key != "trackline/export.jsonl" {
		t.Errorf("SyncS3Key = %q", cfg.SyncS3Key)
	}
	if cfg.SyncGitFile != "trackline.jsonl" {
		t.Errorf("SyncGitFile = %q", cfg.SyncGitFile)
	}
	if cfg.SyncGitBranch != "main" {
		t.Errorf("SyncGitBranch = %q", cfg.SyncGitBranch)
	}
}

func TestLoadSyncCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TRACKLINE_DATABASE_URL", "postgres://localhost/trackline")
	t.Setenv("TRACKLINE_SYNC_INTERVAL", "10m")
	t.Setenv("TRACKLINE_SYNC_S3_BUCKET", "my-bucket")
	t.Setenv("TRACKLINE_SYNC_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("TRACKLINE_SYNC_S3_REGION", "eu-west-1")
	t.Setenv("TRACKLINE_SYNC_S3_KEY", "custom/key.jsonl")
	t.Setenv("TRACKLINE_SYNC_S3_DAILY", "true")
	t.Setenv("TRACKLINE_SYNC_GIT_REPO", "/tmp/repo")
	t.Setenv("TRACKLINE_SYNC_GIT_FILE", "custom.jsonl")
	t.Setenv("TRACKLINE_SYNC_GIT_BRANCH", "backup")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 10*time.Minute {
		t.Errorf("SyncInterval = %v, want 10m", cfg.SyncInterval)
	}
	if cfg.SyncS3Bucket != "my-bucket" || cfg.SyncS3Endpoint != "http://minio:9000" || cfg.SyncS3Region != "eu-west-1" || cfg.SyncS3Key != "custom/key.jsonl" {
		t.Errorf("S3 settings = %q %q %q %q", cfg.SyncS3Bucket, cfg.SyncS3Endpoint, cfg.SyncS3Region, cfg.SyncS3Key)
	}
	if !cfg.SyncS3Daily {
		t.Error("SyncS3Daily = false, want true")
	}
	if cfg.SyncGitRepo != "/tmp/repo" || cfg.SyncGitFile != "custom.jsonl" || cfg.SyncGitBranch != "backup" {
		t.Errorf("git settings = %q %q %q", cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch)
	}
}

func TestLoadSyncInvalidInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TRACKLINE_DATABASE_URL", "postgres://localhost/trackline")
	t.Setenv("TRACKLINE_SYNC_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid TRACKLINE_SYNC_INTERVAL")
	}
}

func TestLoadSyncInvalidDaily(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TRACKLINE_DATABASE_URL", "postgres://localhost/trackline")
	t.Setenv("TRACKLINE_SYNC_S3_DAILY", "sometimes")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid TRACKLINE_SYNC_S3_DAILY")
	}
}

func TestParseDatabaseURL(t *testing.T) {
	for _, tc := range []struct {
		in          string
		wantBackend string
		wantDSN     string
		wantErr     bool
	}{
		{"postgres://u:p@db:5432/trackline?sslmode=disable", BackendPostgres, "postgres://u:p@db:5432/trackline?sslmode=disable", false},
		{"postgresql://db/trackline", BackendPostgres, "postgresql://db/trackline", false},
		{"sqlite://./trackline.db", BackendSQLite, "./trackline.db", false},
		{"sqlite:///abs/trackline.db", BackendSQLite, "/abs/trackline.db", false},
		{"sqlite://", "", "", true},
		{"trackline.db", "", "", true},
	} {
		backend, dsn, err := ParseDatabaseURL(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseDatabaseURL(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if backend != tc.wantBackend || dsn != tc.wantDSN {
			t.Errorf("ParseDatabaseURL(%q) = %q, %q; want %q, %q", tc.in, backend, dsn, tc.wantBackend, tc.wantDSN)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			if got := envOrDefault(tc.key, tc.fallback); got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
