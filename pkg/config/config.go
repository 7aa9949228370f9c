// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads settings from defaults, a YAML file, the environment
// and command line overrides, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// EnvPrefix prefixes environment overrides: CONTRACTS_AUDIT_DSN -> audit.dsn.
const EnvPrefix = "CONTRACTS_"

type Config struct {
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry" json:"telemetry" yaml:"telemetry"`
	Contracts ContractsConfig `koanf:"contracts" json:"contracts" yaml:"contracts"`
	Audit     AuditConfig     `koanf:"audit" json:"audit" yaml:"audit"`
}

type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled               bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Exporter              string `koanf:"exporter" json:"exporter" yaml:"exporter"` // stdout, otlp, none
	OTLPEndpoint          string `koanf:"otlp_endpoint" json:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPInsecure          bool   `koanf:"otlp_insecure" json:"otlp_insecure" yaml:"otlp_insecure"`
	ServiceName           string `koanf:"service_name" json:"service_name" yaml:"service_name"`
	MetricIntervalSeconds int    `koanf:"metric_interval_seconds" json:"metric_interval_seconds" yaml:"metric_interval_seconds"`
}

// ContractsConfig selects which condition kinds are enforced.
type ContractsConfig struct {
	Preconditions  bool `koanf:"preconditions" json:"preconditions" yaml:"preconditions"`
	Postconditions bool `koanf:"postconditions" json:"postconditions" yaml:"postconditions"`
}

type AuditConfig struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Driver  string `koanf:"driver" json:"driver" yaml:"driver"` // memory, sqlite
	DSN     string `koanf:"dsn" json:"dsn" yaml:"dsn"`
}

// Enforcement converts the contracts section into wrapper options.
func (c ContractsConfig) Enforcement() contract.Enforcement {
	return contract.Enforcement{
		Preconditions:  c.Preconditions,
		Postconditions: c.Postconditions,
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Telemetry.Exporter {
	case "stdout", "none":
	case "otlp":
		if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
			return invalid("telemetry.otlp_endpoint", "otlp exporter requires an endpoint")
		}
	default:
		return invalid("telemetry.exporter", fmt.Sprintf("unknown exporter %q", c.Telemetry.Exporter))
	}
	switch c.Audit.Driver {
	case "memory":
	case "sqlite":
		if c.Audit.Enabled && c.Audit.DSN == "" {
			return invalid("audit.dsn", "sqlite audit store requires a dsn")
		}
	default:
		return invalid("audit.driver", fmt.Sprintf("unknown driver %q", c.Audit.Driver))
	}
	return nil
}

func invalid(key, msg string) error {
	return errors.New(errors.CodeInvalidInput, msg, nil).WithContext("key", key)
}

// Global k instance
var k = koanf.New(".")

func setDefaults() {
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")
	k.Set("telemetry.otlp_endpoint", "")
	k.Set("telemetry.otlp_insecure", false)
	k.Set("telemetry.service_name", "contracts")
	k.Set("telemetry.metric_interval_seconds", 60)

	k.Set("contracts.preconditions", true)
	k.Set("contracts.postconditions", true)

	k.Set("audit.enabled", false)
	k.Set("audit.driver", "memory")
	k.Set("audit.dsn", "")
}

// Load reads defaults, the YAML file at path (if any) and the environment.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// LoadWithCLI is Load plus command line arguments: "--config <path>" and
// repeatable "--set key=value", where value is parsed as YAML.
func LoadWithCLI(args []string) (*Config, error) {
	path, sets, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	return load(path, sets)
}

func load(path string, sets []string) (*Config, error) {
	k = koanf.New(".")
	setDefaults()

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (CONTRACTS_AUDIT_DSN -> audit.dsn). Only the first
	// underscore separates the section so keys like otlp_endpoint survive.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	// 3. CLI overrides
	for _, set := range sets {
		key, value, err := parseSet(set)
		if err != nil {
			return nil, err
		}
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseCLIOverrides(args []string) (string, []string, error) {
	var (
		path string
		sets []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("missing value for --config")
			}
			path = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		case arg == "--set":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("missing value for --set")
			}
			sets = append(sets, args[i+1])
			i++
		case strings.HasPrefix(arg, "--set="):
			sets = append(sets, strings.TrimPrefix(arg, "--set="))
		default:
			return "", nil, fmt.Errorf("unknown config argument %q", arg)
		}
	}
	for _, set := range sets {
		if _, _, err := parseSet(set); err != nil {
			return "", nil, err
		}
	}
	return path, sets, nil
}

func parseSet(set string) (string, any, error) {
	key, raw, ok := strings.Cut(set, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid --set value %q, expected key=value", set)
	}
	var value any
	if err := yamlv3.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return key, raw, nil
	}
	return key, value, nil
}
