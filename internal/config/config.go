// Package config loads babble.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"babble/internal/cache"
	"babble/internal/hints"
	"babble/internal/logging"
	"babble/internal/markov"
	"babble/internal/memory"
	"babble/internal/sanitize"
)

const FileName = "babble.yaml"

type Config struct {
	Generator markov.Config  `yaml:"generator"`
	Memory    MemoryConfig   `yaml:"memory"`
	Hints     HintsConfig    `yaml:"hints"`
	Cache     CacheConfig    `yaml:"cache"`
	Sanitize  sanitize.Rules `yaml:"sanitize"`
	Server    ServerConfig   `yaml:"server"`
	Log       logging.Config `yaml:"log"`
	DB        DBConfig       `yaml:"db"`
}

type MemoryConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

type HintsConfig struct {
	// Buffer is how many recent texts per scope feed topic hints.
	Buffer int `yaml:"buffer"`
	Max    int `yaml:"max"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RatePerSecond limits generate calls per scope. Zero disables limiting.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration. Generator values honor the
// BABBLE_* environment overrides.
func Default() Config {
	return Config{
		Generator: markov.DefaultConfig(),
		Memory:    MemoryConfig{Capacity: memory.DefaultCapacity, Window: memory.DefaultWindow},
		Hints:     HintsConfig{Buffer: 20, Max: hints.DefaultMax},
		Cache:     CacheConfig{TTL: cache.DefaultTTL},
		Sanitize:  sanitize.DefaultRules(),
		Server:    ServerConfig{Addr: ":8080", RatePerSecond: 1, Burst: 5},
		Log:       logging.DefaultConfig(),
		DB:        DBConfig{Path: "babble.db"},
	}
}

// Load overlays the YAML file at path on Default. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
