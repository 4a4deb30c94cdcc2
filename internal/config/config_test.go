package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
metering:
  points_costs:
    generation: 10
  retry:
    max_attempts: 6
    initial_delay: 250ms
  reconcile_interval: 90s
  tariffs:
    - type: basic
      daily_generation_limit: 4
      daily_image_limit: 2
      points_cost: 300
account_api:
  base_url: http://accounts.internal:9090
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Metering.PointsCosts.Generation != 10 {
		t.Fatalf("unexpected generation points cost: %d", cfg.Metering.PointsCosts.Generation)
	}
	if cfg.Metering.Retry.MaxAttempts != 6 {
		t.Fatalf("unexpected retry max attempts: %d", cfg.Metering.Retry.MaxAttempts)
	}
	if cfg.Metering.Retry.InitialDelay.String() != "250ms" {
		t.Fatalf("unexpected retry initial delay: %s", cfg.Metering.Retry.InitialDelay)
	}
	if cfg.Metering.ReconcileInterval.String() != "1m30s" {
		t.Fatalf("unexpected reconcile interval: %s", cfg.Metering.ReconcileInterval)
	}
	if len(cfg.Metering.Tariffs) != 1 || cfg.Metering.Tariffs[0].DailyGenerationLimit != 4 {
		t.Fatalf("unexpected tariffs: %+v", cfg.Metering.Tariffs)
	}
	if cfg.AccountAPI.BaseURL != "http://accounts.internal:9090" {
		t.Fatalf("unexpected account api base url: %s", cfg.AccountAPI.BaseURL)
	}

	if cfg.Metering.PointsCosts.Image != 15 {
		t.Fatalf("image points cost default should stay 15")
	}
	if cfg.Metering.RateLimits.AttemptsPerMinute != 30 {
		t.Fatalf("attempts_per_minute default should stay 30")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if len(cfg.Metering.Tariffs) != 3 {
		t.Fatalf("unexpected default tariff count: %d", len(cfg.Metering.Tariffs))
	}
	if cfg.Metering.Tariffs[0].Type != "basic" || cfg.Metering.Tariffs[0].DailyGenerationLimit != 6 {
		t.Fatalf("unexpected basic tariff defaults: %+v", cfg.Metering.Tariffs[0])
	}
	if cfg.Metering.Retry.MaxAttempts != 4 {
		t.Fatalf("unexpected default retry attempts: %d", cfg.Metering.Retry.MaxAttempts)
	}
	if cfg.Metering.Retry.InitialDelay.String() != "500ms" {
		t.Fatalf("unexpected default initial delay: %s", cfg.Metering.Retry.InitialDelay)
	}
	if cfg.Metering.SessionTTL.String() != "12h0m0s" {
		t.Fatalf("unexpected default session ttl: %s", cfg.Metering.SessionTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ACCOUNT_API_BASE_URL", "http://override:7070")
	t.Setenv("RETRY_MAX_ATTEMPTS", "2")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AccountAPI.BaseURL != "http://override:7070" {
		t.Fatalf("env override not applied: %s", cfg.AccountAPI.BaseURL)
	}
	if cfg.Metering.Retry.MaxAttempts != 2 {
		t.Fatalf("env override not applied: %d", cfg.Metering.Retry.MaxAttempts)
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error when auth.jwt_secret is the default in production")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"ACCOUNT_API_BASE_URL",
		"ACCOUNT_API_TOKEN",
		"ACCOUNT_API_TIMEOUT",
		"RETRY_MAX_ATTEMPTS",
		"RETRY_INITIAL_DELAY",
		"RECONCILE_INTERVAL",
		"SESSION_TTL",
	} {
		t.Setenv(key, "")
	}
}
