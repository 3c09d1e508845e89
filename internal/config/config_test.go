// ABOUTME: Unit tests for configuration loading and validation
// ABOUTME: Covers env var expansion, defaults, and required-field errors

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasker.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":9090"
database:
  path: "/tmp/tasker-test.db"
auth:
  jwt_secret: "test-secret"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, ":9090")
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TASKER_TEST_SECRET", "secret-from-env")

	path := writeConfig(t, `
database:
  path: "/tmp/tasker-test.db"
auth:
  jwt_secret: "${TASKER_TEST_SECRET}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "secret-from-env" {
		t.Errorf("JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "secret-from-env")
	}
}

func TestLoadDefaultsHTTPAddr(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/tasker-test.db"
auth:
  jwt_secret: "test-secret"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, ":8080")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/tasker-test.db"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("Load() error = %v, want jwt_secret validation failure", err)
	}
}

func TestLoadRequiresDatabasePath(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "test-secret"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "database.path") {
		t.Errorf("Load() error = %v, want database.path validation failure", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Error("Load() error = nil for a missing file")
	}
}
