// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-sskr.
//
// go-sskr is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


// Package config loads the sskr CLI configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-sskr/pkg/crypto/rand"
	"github.com/jeremyhahn/go-sskr/pkg/threshold/sskr"
	"github.com/jeremyhahn/go-sskr/pkg/validation"
)

// Config represents the complete CLI configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	RNG      rand.Config    `yaml:"rng"`
	Output   OutputConfig   `yaml:"output"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OutputConfig controls how results and shares are printed
type OutputConfig struct {
	// Format is text or json
	Format string `yaml:"format"`
	// Encoding is hex or base64 for secrets and shares
	Encoding string `yaml:"encoding"`
}

// StorageConfig locates stored share sets
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// MetricsConfig controls the Prometheus textfile written after each command
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// DefaultsConfig supplies the group layout when split is run without one
type DefaultsConfig struct {
	GroupThreshold int    `yaml:"group_threshold"`
	Groups         string `yaml:"groups"`
}

// Default returns the built in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		RNG:     rand.Config{Mode: rand.ModeAuto, FallbackMode: rand.ModeSoftware},
		Output:  OutputConfig{Format: "text", Encoding: "hex"},
		Storage: StorageConfig{Dir: "shares"},
		Defaults: DefaultsConfig{
			GroupThreshold: 1,
			Groups:         "2-of-3",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		return fmt.Errorf("invalid output format: %s (must be json or text)", c.Output.Format)
	}
	switch strings.ToLower(c.Output.Encoding) {
	case "hex", "base64":
	default:
		return fmt.Errorf("invalid output encoding: %s (must be hex or base64)", c.Output.Encoding)
	}

	switch c.RNG.Mode {
	case rand.ModeAuto, rand.ModeSoftware, rand.ModeTPM2, rand.ModePKCS11:
	default:
		return fmt.Errorf("invalid rng mode: %s", c.RNG.Mode)
	}
	switch c.RNG.FallbackMode {
	case "", rand.ModeSoftware, rand.ModeTPM2, rand.ModePKCS11:
	default:
		return fmt.Errorf("invalid rng fallback mode: %s", c.RNG.FallbackMode)
	}
	if c.RNG.Mode == rand.ModePKCS11 && (c.RNG.PKCS11 == nil || c.RNG.PKCS11.Module == "") {
		return fmt.Errorf("rng pkcs11 module is required when mode is pkcs11")
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return fmt.Errorf("metrics textfile is required when metrics are enabled")
	}

	if c.Defaults.Groups != "" {
		groups, err := c.DefaultGroups()
		if err != nil {
			return err
		}
		if _, err := sskr.CountShares(c.Defaults.GroupThreshold, groups); err != nil {
			return fmt.Errorf("invalid default groups: %w", err)
		}
	}
	return nil
}

// DefaultGroups parses Defaults.Groups.
func (c *Config) DefaultGroups() ([]sskr.GroupDescriptor, error) {
	groups, err := validation.ParseGroupSpecs(c.Defaults.Groups)
	if err != nil {
		return nil, fmt.Errorf("invalid default groups: %w", err)
	}
	return groups, nil
}

// IsDebug reports whether debug logging is configured.
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.Logging.Level, "debug")
}
