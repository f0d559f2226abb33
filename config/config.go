package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds server settings loaded from an optional YAML file.
type Config struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"`
	DBPath  string `yaml:"db_path"`
	LogFile string `yaml:"log_file"`

	// TokenTTLHours is the lifetime of issued login tokens.
	TokenTTLHours int `yaml:"token_ttl_hours"`

	// Spawn cadence bounds in seconds; each player draws a fresh random
	// interval in [min,max] after every spawn check.
	SpawnIntervalMinSec int `yaml:"spawn_interval_min_sec"`
	SpawnIntervalMaxSec int `yaml:"spawn_interval_max_sec"`
}

func defaults() Config {
	return Config{
		Addr:                ":8080",
		DataDir:             "data",
		DBPath:              "data/cubegame.db",
		LogFile:             "app.log",
		TokenTTLHours:       24,
		SpawnIntervalMinSec: 10,
		SpawnIntervalMaxSec: 30,
	}
}

// Load reads the config at path, falling back to defaults when path is empty.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("token_ttl_hours must be positive")
	}
	if c.SpawnIntervalMinSec < 1 {
		return fmt.Errorf("spawn_interval_min_sec must be at least 1")
	}
	if c.SpawnIntervalMaxSec < c.SpawnIntervalMinSec {
		return fmt.Errorf("spawn_interval_max_sec must be >= spawn_interval_min_sec")
	}
	return nil
}
