package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/site19/containment-backend/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newTestLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port: want=8080 got=%q", cfg.Port)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("ttl: want=1h got=%s", cfg.AccessTokenTTL)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("port: \"9000\"\njwt_secret_key: from-file\naccess_token_ttl_seconds: 120\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET_KEY", "from-env")

	cfg, err := Load(newTestLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("port from file: want=9000 got=%q", cfg.Port)
	}
	// Env vars win over the file.
	if cfg.JWTSecretKey != "from-env" {
		t.Fatalf("secret: want=from-env got=%q", cfg.JWTSecretKey)
	}
	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("ttl: want=2m got=%s", cfg.AccessTokenTTL)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(newTestLogger(t)); err == nil {
		t.Fatalf("Load: expected error for missing config file")
	}
}
