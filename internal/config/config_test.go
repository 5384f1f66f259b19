package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// t.Setenv registers the restore; unset so envDefault values apply.
	for _, key := range []string{"PORT", "DB_PATH", "UPLOAD_DIR", "MIGRATIONS_DIR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "4000" {
		t.Fatalf("expected default port 4000, got %q", cfg.Port)
	}
	if cfg.DBPath != "./scenarios.db" {
		t.Fatalf("expected default db path ./scenarios.db, got %q", cfg.DBPath)
	}
	if cfg.UploadDir != "./uploads" {
		t.Fatalf("expected default upload dir ./uploads, got %q", cfg.UploadDir)
	}
	if cfg.MigrationsDir != "./migrations" {
		t.Fatalf("expected default migrations dir ./migrations, got %q", cfg.MigrationsDir)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("expected db path /tmp/test.db, got %q", cfg.DBPath)
	}
}
