package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "data/cubegame.db" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.SpawnIntervalMinSec != 10 || cfg.SpawnIntervalMaxSec != 30 {
		t.Fatalf("spawn bounds = %d/%d", cfg.SpawnIntervalMinSec, cfg.SpawnIntervalMaxSec)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "addr: \":9090\"\nspawn_interval_min_sec: 5\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.SpawnIntervalMinSec != 5 {
		t.Errorf("min interval = %d", cfg.SpawnIntervalMinSec)
	}
	// Untouched keys keep their defaults.
	if cfg.TokenTTLHours != 24 {
		t.Errorf("ttl = %d", cfg.TokenTTLHours)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = " " }},
		{"zero ttl", func(c *Config) { c.TokenTTLHours = 0 }},
		{"zero min interval", func(c *Config) { c.SpawnIntervalMinSec = 0 }},
		{"max below min", func(c *Config) { c.SpawnIntervalMaxSec = 5; c.SpawnIntervalMinSec = 10 }},
	}
	for _, tc := range cases {
		cfg := defaults()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: want error", tc.name)
		}
	}
}
