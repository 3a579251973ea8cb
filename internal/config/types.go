package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// VersionPrefix is the config version this build understands
const VersionPrefix = "v0.0.1"

// DefaultMaxConcurrentFiles bounds parallel input reads when the config leaves it at 0
const DefaultMaxConcurrentFiles = 4

// OutputFormat selects how command results are rendered
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// TransportType represents the transport the tool server listens on
type TransportType string

const (
	TransportStdio      TransportType = "stdio"
	TransportStreamable TransportType = "streamable-http"
)

// OutputConfig controls result rendering
type OutputConfig struct {
	Format OutputFormat `json:"format,omitempty"`
}

// LogConfig mirrors the LOG_LEVEL and LOG_FORMAT environment variables
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// FindConfig holds defaults for domain lookups
type FindConfig struct {
	// DefaultDomain is used when find is called without -domain.
	// Stored normalized (trimmed and case-folded).
	DefaultDomain string `json:"defaultDomain,omitempty"`
}

// InputConfig controls how input lists are read
type InputConfig struct {
	MaxConcurrentFiles int `json:"maxConcurrentFiles,omitempty"`
}

// ServerConfig configures the MCP tool server
type ServerConfig struct {
	Name      string        `json:"name,omitempty"`
	Transport TransportType `json:"transport,omitempty"`
	Addr      string        `json:"addr,omitempty"`
}

// Config represents the config structure with resolved values
type Config struct {
	Version string       `json:"version"`
	Output  OutputConfig `json:"output"`
	Log     LogConfig    `json:"log"`
	Find    FindConfig   `json:"find"`
	Input   InputConfig  `json:"input"`
	Server  ServerConfig `json:"server"`
}

// Default returns the configuration used when no config file is given
func Default() Config {
	cfg := Config{Version: VersionPrefix}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Format == "" {
		cfg.Output.Format = OutputFormatText
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Input.MaxConcurrentFiles == 0 {
		cfg.Input.MaxConcurrentFiles = DefaultMaxConcurrentFiles
	}
	if cfg.Server.Name == "" {
		cfg.Server.Name = "mailfold"
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = TransportStdio
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

// RawConfigValue represents a value that could be a string or env ref.
// This is only used during parsing, not in the final config
type RawConfigValue struct {
	value string
}

// Value returns the resolved string
func (r *RawConfigValue) Value() string {
	return r.value
}

// ParseConfigValue parses a JSON value that could be a string or reference object
func ParseConfigValue(raw json.RawMessage) (*RawConfigValue, error) {
	// Try plain string first
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return &RawConfigValue{value: str}, nil
	}

	// Try reference object
	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, fmt.Errorf("config value must be string or reference object")
	}

	if envVar, ok := ref["$env"]; ok {
		value := os.Getenv(envVar)
		if value == "" {
			return nil, fmt.Errorf("environment variable %s not set", envVar)
		}
		// Strip surrounding quotes if present (only matching pairs)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		return &RawConfigValue{value: value}, nil
	}

	return nil, fmt.Errorf("unknown reference type in config value")
}
