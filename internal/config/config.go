// Package config loads the pipeline configuration: which plugins run, in which
// order, with which options, and where the generated program goes.
//
//	output: locustfile.py
//	log_level: info
//	plugins:
//	  - name: header
//	    options:
//	      name: X-Request-Source
//	      value: transformer
//	  - name: dedupe
//	    enabled: false
//
// Values are read from the YAML file first, then overridden by environment
// variables prefixed with TRANSFORMER_ (e.g. TRANSFORMER_LOG_LEVEL=debug).
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"transformer/internal/registry"
)

const (
	// EnvPrefix marks environment variables that override file values.
	EnvPrefix = "TRANSFORMER_"
	// DefaultOutput is the program path used when none is configured.
	DefaultOutput = "locustfile.py"
	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"
)

// Config is the pipeline configuration.
type Config struct {
	Output   string        `koanf:"output"`
	LogLevel string        `koanf:"log_level"`
	Plugins  []PluginEntry `koanf:"plugins"`
}

// PluginEntry is one plugin of the pipeline, in run order.
type PluginEntry struct {
	Name    string            `koanf:"name"`
	Enabled *bool             `koanf:"enabled"`
	Options map[string]string `koanf:"options"`
}

// IsEnabled reports whether the entry takes part in the pipeline; entries are
// enabled unless stated otherwise.
func (e PluginEntry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Load reads the configuration file at path and applies environment overrides.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return finish(k)
}

// Parse parses YAML configuration data and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if !k.Exists("output") {
		_ = k.Set("output", DefaultOutput)
	}

	if !k.Exists("log_level") {
		_ = k.Set("log_level", DefaultLogLevel)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// EnabledPlugins returns the enabled entries as registry references, in order.
func (c *Config) EnabledPlugins() []registry.Ref {
	var refs []registry.Ref

	for _, e := range c.Plugins {
		if !e.IsEnabled() {
			continue
		}

		refs = append(refs, registry.Ref{Name: e.Name, Options: registry.Options(e.Options)})
	}

	return refs
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}

	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}

	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}

	return lvl, nil
}
