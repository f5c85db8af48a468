// Package config loads runner settings from a YAML file, with secret
// fields overridable from the environment so credentials never need to
// sit in a checked-in file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the runner needs to drive one orchestration
// cycle: where inventory and intents live, how often to poll, and how
// to reach an optional external policy service.
type Config struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	InventoryPath   string `yaml:"inventory_path"`
	IntentsPath     string `yaml:"intents_path"`
	AuditPath       string `yaml:"audit_path"`

	UseMCP   bool   `yaml:"use_mcp"`
	MCPURL   string `yaml:"mcp_url"`
	AuthToken string `yaml:"auth_token"`
	HMACSecret string `yaml:"hmac_secret"`

	AllowedClockSkewSeconds int `yaml:"allowed_clock_skew_seconds"`
	NonceTTLSeconds         int `yaml:"nonce_ttl_seconds"`

	Guard GuardConfig `yaml:"guard"`
}

// GuardConfig mirrors guard.Config's tunables so they can be set from
// YAML instead of hardcoded defaults.
type GuardConfig struct {
	DefaultMode               string `yaml:"default_mode"`
	HighRiskMode              string `yaml:"high_risk_mode"`
	RequireApprovalBlocksApply *bool  `yaml:"require_approval_blocks_apply"`
}

// Load reads path, applies defaults for unset fields, and overrides
// AuthToken and HMACSecret from CFO_AUTH_TOKEN / CFO_HMAC_SECRET when
// those environment variables are set, so a config file can be
// committed without embedding credentials.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg = withDefaults(cfg)

	if token := os.Getenv("CFO_AUTH_TOKEN"); token != "" {
		cfg.AuthToken = token
	}
	if secret := os.Getenv("CFO_HMAC_SECRET"); secret != "" {
		cfg.HMACSecret = secret
	}

	if cfg.UseMCP && cfg.MCPURL == "" {
		return Config{}, fmt.Errorf("use_mcp is true but mcp_url is empty")
	}

	return cfg, nil
}

func withDefaults(cfg Config) Config {
	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = 60
	}
	if cfg.AllowedClockSkewSeconds <= 0 {
		cfg.AllowedClockSkewSeconds = 60
	}
	if cfg.NonceTTLSeconds <= 0 {
		cfg.NonceTTLSeconds = 300
	}
	if cfg.AuditPath == "" {
		cfg.AuditPath = "audit.log"
	}
	return cfg
}

// Interval returns IntervalSeconds as a time.Duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// AllowedClockSkew returns AllowedClockSkewSeconds as a time.Duration.
func (c Config) AllowedClockSkew() time.Duration {
	return time.Duration(c.AllowedClockSkewSeconds) * time.Second
}

// NonceTTL returns NonceTTLSeconds as a time.Duration.
func (c Config) NonceTTL() time.Duration {
	return time.Duration(c.NonceTTLSeconds) * time.Second
}
