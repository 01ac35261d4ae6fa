package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected default env to be dev, got %q", cfg.App.Env)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("unexpected default port %q", cfg.App.Port)
	}
	if got := cfg.Storage.StorageDir(); got != filepath.Join("./data", "storage") {
		t.Fatalf("unexpected storage dir %q", got)
	}
	if got := cfg.Backup.Dir; got != filepath.Join("./data", "backups") {
		t.Fatalf("expected backup dir derived from data dir, got %q", got)
	}
	if cfg.Vision.Enabled() {
		t.Fatal("vision must be disabled without an API key")
	}
	if cfg.Vision.Timeout != 15*time.Second {
		t.Fatalf("unexpected vision timeout %v", cfg.Vision.Timeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvDataDir, "/var/lib/sklad")
	t.Setenv(EnvBackupDir, "/mnt/backups")
	t.Setenv(EnvVisionAPIKey, "key-123")
	t.Setenv(EnvCORSOrigins, "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env, got %q", cfg.App.Env)
	}
	if cfg.Backup.Dir != "/mnt/backups" {
		t.Fatalf("explicit backup dir should win, got %q", cfg.Backup.Dir)
	}
	if !cfg.Vision.Enabled() {
		t.Fatal("vision should be enabled with an API key")
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORS.AllowedOrigins)
	}
}
