package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "config-test-secret-0123456789abcdef"

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsAndFile(t *testing.T) {
	t.Setenv("AUTH_SIGNING_SECRET", testSecret)

	path := writeConfigFile(t, `
service:
  id: auth-under-test
  http_port: 8181
dependencies:
  postgres_url: postgres://localhost:5432/test
  redis_url: redis://localhost:6379/1
auth:
  default_role: ROLE_ARTISAN
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.ServiceID != "auth-under-test" || cfg.HTTPPort != 8181 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DefaultRole != "ROLE_ARTISAN" {
		t.Fatalf("default role = %s", cfg.DefaultRole)
	}
	if cfg.FailedThreshold != 5 || cfg.LockDuration != 15*time.Minute {
		t.Fatalf("lockout defaults: threshold=%d duration=%v", cfg.FailedThreshold, cfg.LockDuration)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.ResetTokenTTL != 15*time.Minute {
		t.Fatalf("ttl defaults: token=%v reset=%v", cfg.TokenTTL, cfg.ResetTokenTTL)
	}
	if len(cfg.PublicPathPrefixes) == 0 {
		t.Fatal("public path prefixes default missing")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Setenv("AUTH_SIGNING_SECRET", testSecret)
	t.Setenv("DB_URL", "postgres://env-host:5432/env")
	t.Setenv("FAILED_LOGIN_THRESHOLD", "3")
	t.Setenv("ACCOUNT_LOCKOUT_MINUTES", "30")
	t.Setenv("TOKEN_EXPIRY_MINUTES", "60")

	path := writeConfigFile(t, `
dependencies:
  postgres_url: postgres://file-host:5432/file
  redis_url: redis://localhost:6379/0
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://env-host:5432/env" {
		t.Fatalf("env did not override file: %s", cfg.DatabaseURL)
	}
	if cfg.FailedThreshold != 3 || cfg.LockDuration != 30*time.Minute || cfg.TokenTTL != time.Hour {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsMissingOrShortSecret(t *testing.T) {
	path := writeConfigFile(t, `
dependencies:
  postgres_url: postgres://localhost:5432/test
  redis_url: redis://localhost:6379/0
`)

	t.Setenv("AUTH_SIGNING_SECRET", "")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("missing signing secret must fail startup")
	}

	t.Setenv("AUTH_SIGNING_SECRET", "too-short")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("short signing secret must fail startup")
	}
}

func TestLoadConfigRequiresDependencies(t *testing.T) {
	t.Setenv("AUTH_SIGNING_SECRET", testSecret)
	t.Setenv("DB_URL", "")
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("REDIS_URL", "")

	path := writeConfigFile(t, "service:\n  id: incomplete\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("missing database url must fail startup")
	}
}
