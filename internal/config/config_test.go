package config

import (
	"errors"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ADMIN_IDS", "1001, 1002")
	t.Setenv("REPORT_API_URL", "http://127.0.0.1:9000")
	t.Setenv("REPORT_API_TOKEN", "secret")
}

func clearOptionalEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POLL_TIMEOUT_SECONDS",
		"REPORT_HTTP_TIMEOUT_SECONDS",
		"REPORT_DELAY_SECONDS",
		"DAILY_REPORT_LIMIT",
		"BULK_PENDING_TTL_SECONDS",
		"STATS_TIMEZONE",
		"S3_USE_SSL",
		"REDIS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.AdminIDs) != 2 || cfg.AdminIDs[0] != 1001 || cfg.AdminIDs[1] != 1002 {
		t.Fatalf("unexpected admin ids: %v", cfg.AdminIDs)
	}
	if cfg.ReportDelay() != 8*time.Second {
		t.Fatalf("expected default delay 8s, got %s", cfg.ReportDelay())
	}
	if cfg.DailyReportLimit != 50 {
		t.Fatalf("expected default daily limit 50, got %d", cfg.DailyReportLimit)
	}
	if cfg.PendingTTL() != 10*time.Minute {
		t.Fatalf("expected pending ttl 10m, got %s", cfg.PendingTTL())
	}
	if cfg.StatsTimezone != "UTC" {
		t.Fatalf("expected UTC stats timezone, got %q", cfg.StatsTimezone)
	}
	if cfg.IsS3Enabled() {
		t.Fatal("expected s3 disabled by default")
	}
}

func TestLoadDelayOverrideIsClamped(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("REPORT_DELAY_SECONDS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ReportDelay() != time.Second {
		t.Fatalf("expected clamped delay 1s, got %s", cfg.ReportDelay())
	}
}

func TestLoadFailsWithoutAdminIDs(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("ADMIN_IDS", "")

	if _, err := Load(); !errors.Is(err, ErrMissingAdminIDs) {
		t.Fatalf("expected ErrMissingAdminIDs, got %v", err)
	}
}

func TestLoadFailsWithoutCredentials(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("REPORT_API_TOKEN", "")

	if _, err := Load(); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestLoadRejectsMalformedAdminIDs(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("ADMIN_IDS", "1001,abc")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for malformed ADMIN_IDS")
	}
}

func TestLoadHTTPAddrCanBeDisabled(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != "" {
		t.Fatalf("expected empty http addr, got %q", cfg.HTTPAddr)
	}
}
