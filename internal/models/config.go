package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	ServerAddr  string `yaml:"server_addr"`
	DatabaseURL string `yaml:"database_url"`

	// Retention sweep. Durations are Go duration strings in the yaml file.
	SweepInterval time.Duration `yaml:"-"`
	CreatedTTL    time.Duration `yaml:"-"` // purge if never used and older than this
	UsedTTL       time.Duration `yaml:"-"` // purge if last use is older than this

	RawSweepInterval string `yaml:"sweep_interval"`
	RawCreatedTTL    string `yaml:"created_ttl"`
	RawUsedTTL       string `yaml:"used_ttl"`
}

const (
	defaultServerAddr    = ":3000"
	defaultSweepInterval = time.Hour
	defaultCreatedTTL    = 7 * 24 * time.Hour
	defaultUsedTTL       = 30 * 24 * time.Hour
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = defaultServerAddr
	}
	if cfg.SweepInterval, err = parseDuration(cfg.RawSweepInterval, defaultSweepInterval); err != nil {
		return nil, fmt.Errorf("sweep_interval: %w", err)
	}
	if cfg.CreatedTTL, err = parseDuration(cfg.RawCreatedTTL, defaultCreatedTTL); err != nil {
		return nil, fmt.Errorf("created_ttl: %w", err)
	}
	if cfg.UsedTTL, err = parseDuration(cfg.RawUsedTTL, defaultUsedTTL); err != nil {
		return nil, fmt.Errorf("used_ttl: %w", err)
	}
	return &cfg, nil
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}
