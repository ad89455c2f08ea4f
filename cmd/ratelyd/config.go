package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/almgong/rately/pkg/rately"
)

// config describes the ratelyd YAML configuration. Dispatcher knobs are
// pointers so that absent keys fall back to the library defaults while an
// explicit zero stays zero. Unrecognized keys are ignored.
type config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Dispatcher struct {
		Policy                   string `yaml:"policy"`
		MaxOperationsPerInterval *int   `yaml:"max_operations_per_interval"`
		RateLimitIntervalMS      *int   `yaml:"rate_limit_interval_ms"`
		BufferMS                 *int   `yaml:"buffer_ms"`
	} `yaml:"dispatcher"`
}

// loadConfig reads and validates the configuration file.
func loadConfig(path string) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Dispatcher.Policy == "" {
		cfg.Dispatcher.Policy = "concurrent"
	}
	if cfg.Dispatcher.Policy != "concurrent" && cfg.Dispatcher.Policy != "serial" {
		return cfg, fmt.Errorf("unsupported dispatcher policy %q", cfg.Dispatcher.Policy)
	}
	return cfg, nil
}

// dispatcherConfig maps the boundary aliases onto the library configuration.
func (c config) dispatcherConfig() rately.Config {
	out := rately.DefaultConfig()
	if c.Dispatcher.MaxOperationsPerInterval != nil {
		out.Capacity = *c.Dispatcher.MaxOperationsPerInterval
	}
	if c.Dispatcher.RateLimitIntervalMS != nil {
		out.Window = time.Duration(*c.Dispatcher.RateLimitIntervalMS) * time.Millisecond
	}
	if c.Dispatcher.BufferMS != nil {
		out.GraceBuffer = time.Duration(*c.Dispatcher.BufferMS) * time.Millisecond
	}
	return out
}
