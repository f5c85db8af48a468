package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/summit/cfo/internal/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfo.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "inventory_path: inventory.json\nintents_path: intents.json\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IntervalSeconds != 60 {
		t.Fatalf("expected default interval 60, got %d", cfg.IntervalSeconds)
	}
	if cfg.AllowedClockSkewSeconds != 60 || cfg.NonceTTLSeconds != 300 {
		t.Fatalf("expected default clock skew 60 and nonce ttl 300, got %d/%d", cfg.AllowedClockSkewSeconds, cfg.NonceTTLSeconds)
	}
	if cfg.AuditPath != "audit.log" {
		t.Fatalf("expected default audit path audit.log, got %q", cfg.AuditPath)
	}
}

func TestLoadRejectsUseMCPWithoutURL(t *testing.T) {
	path := writeConfigFile(t, "use_mcp: true\n")
	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected an error when use_mcp is true but mcp_url is empty")
	}
}

func TestLoadEnvironmentOverridesSecrets(t *testing.T) {
	path := writeConfigFile(t, "auth_token: from-file\nhmac_secret: from-file\n")
	t.Setenv("CFO_AUTH_TOKEN", "from-env-token")
	t.Setenv("CFO_HMAC_SECRET", "from-env-secret")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AuthToken != "from-env-token" || cfg.HMACSecret != "from-env-secret" {
		t.Fatalf("expected environment variables to override file secrets, got token=%q secret=%q", cfg.AuthToken, cfg.HMACSecret)
	}
}

func TestLoadDurationHelpers(t *testing.T) {
	path := writeConfigFile(t, "interval_seconds: 30\nallowed_clock_skew_seconds: 10\nnonce_ttl_seconds: 120\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Interval().Seconds() != 30 {
		t.Fatalf("expected a 30s interval, got %v", cfg.Interval())
	}
	if cfg.AllowedClockSkew().Seconds() != 10 {
		t.Fatalf("expected a 10s clock skew, got %v", cfg.AllowedClockSkew())
	}
	if cfg.NonceTTL().Seconds() != 120 {
		t.Fatalf("expected a 120s nonce ttl, got %v", cfg.NonceTTL())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
