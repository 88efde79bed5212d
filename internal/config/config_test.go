package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Node.Mode != "standard" || cfg.Node.Total != 3 {
		t.Errorf("node defaults drifted: %+v", cfg.Node)
	}
	if cfg.Timing.ElectionTimeoutMin != 3*time.Second || cfg.Timing.ElectionTimeoutMax != 5*time.Second {
		t.Errorf("timer defaults drifted: %+v", cfg.Timing)
	}
	if cfg.Reliability.PNode != 1.0 || cfg.Reliability.Epsilon != 0.001 {
		t.Errorf("reliability defaults drifted: %+v", cfg.Reliability)
	}
	if errs := ValidateConfig(cfg); len(errs) > 0 {
		t.Errorf("defaults must validate cleanly: %v", errs)
	}
}

func TestParseConfig(t *testing.T) {
	yaml := `
# Bench node 2
node:
  id: 2
  total: 5
  mode: reliability
  leaderId: 1

transport:
  rxAddress: "0.0.0.0:53002"
  txAddress: 127.0.0.1:53001
  receiveTimeout: 200ms
  snrThreshold: 4.5

timing:
  heartbeatInterval: 500ms
  adaptiveTimeout: true
  adaptiveAlpha: 25

reliability:
  pNode: 0.85
  targetSnr: 18

logging:
  level: debug
  format: json
`
	cfg, err := ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if cfg.Node.ID != 2 || cfg.Node.Total != 5 || cfg.Node.Mode != "reliability" {
		t.Errorf("node section mismatch: %+v", cfg.Node)
	}
	if cfg.Transport.RXAddress != "0.0.0.0:53002" || cfg.Transport.SNRThreshold != 4.5 {
		t.Errorf("transport section mismatch: %+v", cfg.Transport)
	}
	if cfg.Transport.ReceiveTimeout != 200*time.Millisecond {
		t.Errorf("receiveTimeout = %v", cfg.Transport.ReceiveTimeout)
	}
	if !cfg.Timing.AdaptiveTimeout || cfg.Timing.AdaptiveAlpha != 25 {
		t.Errorf("timing section mismatch: %+v", cfg.Timing)
	}
	if cfg.Reliability.PNode != 0.85 || cfg.Reliability.TargetSNR != 18 {
		t.Errorf("reliability section mismatch: %+v", cfg.Reliability)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging section mismatch: %+v", cfg.Logging)
	}

	// Untouched keys keep their defaults.
	if cfg.Timing.TickInterval != 50*time.Millisecond {
		t.Errorf("unset key lost its default: %v", cfg.Timing.TickInterval)
	}
}

func TestParseConfigEnvSubstitution(t *testing.T) {
	os.Setenv("AIRRAFT_TEST_ID", "4")
	defer os.Unsetenv("AIRRAFT_TEST_ID")

	yaml := `
node:
  id: ${AIRRAFT_TEST_ID}
  total: ${AIRRAFT_TEST_TOTAL:-7}
`
	cfg, err := ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.Node.ID != 4 {
		t.Errorf("env substitution failed: id = %d", cfg.Node.ID)
	}
	if cfg.Node.Total != 7 {
		t.Errorf("env default failed: total = %d", cfg.Node.Total)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig([]byte("node:\n  id: abc\n")); err != ErrInvalidNumber {
		t.Errorf("bad number: got %v", err)
	}
	if _, err := ParseConfig([]byte("timing:\n  heartbeatInterval: fast\n")); err != ErrInvalidDuration {
		t.Errorf("bad duration: got %v", err)
	}
	if _, err := ParseConfig([]byte("mystery:\n  key: 1\n")); err != ErrUnknownSection {
		t.Errorf("unknown section: got %v", err)
	}
	if _, err := ParseConfig([]byte("just some text\n")); err != ErrInvalidYAML {
		t.Errorf("non-yaml input: got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.yaml")
	content := "node:\n  id: 3\n  total: 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Node.ID != 3 {
		t.Errorf("id = %d, want 3", cfg.Node.ID)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err != ErrFileNotFound {
		t.Errorf("missing file: got %v", err)
	}
}

func TestValidateConfigCatchesMistakes(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero node id", func(c *Config) { c.Node.ID = 0 }},
		{"id beyond cluster", func(c *Config) { c.Node.ID = 9 }},
		{"unknown mode", func(c *Config) { c.Node.Mode = "quantum" }},
		{"leader outside cluster", func(c *Config) { c.Node.Mode = "fixed-leader"; c.Node.LeaderID = 9 }},
		{"bad rx address", func(c *Config) { c.Transport.RXAddress = "nonsense" }},
		{"inverted election range", func(c *Config) { c.Timing.ElectionTimeoutMax = time.Second }},
		{"timeout below heartbeat", func(c *Config) {
			c.Timing.ElectionTimeoutMin = 500 * time.Millisecond
			c.Timing.ElectionTimeoutMax = 600 * time.Millisecond
		}},
		{"pNode above one", func(c *Config) { c.Reliability.PNode = 1.2 }},
		{"gain initial out of range", func(c *Config) { c.Gain.Initial = 0.95 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.mutate(cfg)
		if errs := ValidateConfig(cfg); len(errs) == 0 {
			t.Errorf("%s: validation passed, want failure", c.name)
		}
	}
}
