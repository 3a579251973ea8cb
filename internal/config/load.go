package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dgellow/mailfold/internal/log"
)

// Load loads and processes the config with immediate env var resolution
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if !strings.HasPrefix(version, VersionPrefix) {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	// The custom UnmarshalJSON methods resolve env vars immediately
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&config)
	applyEnvOverrides(&config)

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// applyEnvOverrides lets LOG_LEVEL and LOG_FORMAT win over the file
func applyEnvOverrides(config *Config) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Log.Format = format
	}
}

// ValidateConfig validates the resolved configuration
func ValidateConfig(config *Config) error {
	switch config.Output.Format {
	case OutputFormatText, OutputFormatJSON:
	default:
		return fmt.Errorf("output.format must be text or json, got %q", config.Output.Format)
	}

	if err := log.ValidateLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if err := log.ValidateFormat(config.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}

	if config.Input.MaxConcurrentFiles < 0 {
		return fmt.Errorf("input.maxConcurrentFiles cannot be negative")
	}

	if config.Server.Name == "" {
		return fmt.Errorf("server.name is required")
	}
	switch config.Server.Transport {
	case TransportStdio:
	case TransportStreamable:
		if config.Server.Addr == "" {
			return fmt.Errorf("server.addr is required for %s transport", config.Server.Transport)
		}
	default:
		return fmt.Errorf("server.transport must be stdio or streamable-http, got %q", config.Server.Transport)
	}

	if strings.Contains(config.Find.DefaultDomain, "@") {
		log.LogWarn("find.defaultDomain contains '@' and will never match a domain part")
	}

	return nil
}
