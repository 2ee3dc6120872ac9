package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/taskmon/internal/model"
)

// ConfigYAMLRepository loads monitor configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetMonitorConfig loads a monitor configuration from a YAML file and returns a validated domain model.
// Missing values are left empty so the monitor defaults apply.
func (r *ConfigYAMLRepository) GetMonitorConfig(ctx context.Context, path string) (model.MonitorConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.MonitorConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.MonitorConfig{}, ctx.Err()
	}

	var cfg MonitorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.MonitorConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	mcfg, err := cfg.toModel()
	if err != nil {
		return model.MonitorConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return mcfg, nil
}

// MonitorConfig represents the YAML structure for monitor configuration.
type MonitorConfig struct {
	Interval string        `yaml:"interval"`
	Backoff  BackoffConfig `yaml:"backoff"`
}

// BackoffConfig represents the YAML structure for the poll backoff.
type BackoffConfig struct {
	Type       string  `yaml:"type"`
	Multiplier float64 `yaml:"multiplier"`
	Max        string  `yaml:"max"`
}

func (c MonitorConfig) toModel() (model.MonitorConfig, error) {
	interval, err := parseDuration(c.Interval)
	if err != nil {
		return model.MonitorConfig{}, fmt.Errorf("interval: %w", err)
	}

	backoff, err := c.Backoff.toModel()
	if err != nil {
		return model.MonitorConfig{}, fmt.Errorf("backoff: %w", err)
	}

	return model.MonitorConfig{Interval: interval, Backoff: backoff}, nil
}

func (c BackoffConfig) toModel() (model.BackoffConfig, error) {
	switch c.Type {
	case "", model.BackoffTypeFixed, model.BackoffTypeExponential:
	default:
		return model.BackoffConfig{}, fmt.Errorf("type must be %q or %q, got: %q", model.BackoffTypeFixed, model.BackoffTypeExponential, c.Type)
	}

	if c.Multiplier < 0 {
		return model.BackoffConfig{}, fmt.Errorf("multiplier can't be negative, got: %v", c.Multiplier)
	}

	maxDelay, err := parseDuration(c.Max)
	if err != nil {
		return model.BackoffConfig{}, fmt.Errorf("max: %w", err)
	}

	return model.BackoffConfig{Type: c.Type, Multiplier: c.Multiplier, Max: maxDelay}, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got: %s", s)
	}

	return d, nil
}
