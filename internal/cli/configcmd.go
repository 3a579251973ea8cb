package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgellow/mailfold/internal/config"
)

func generateDefaultConfig(path string) error {
	defaultConfig := map[string]any{
		"version": config.VersionPrefix,
		"output": map[string]any{
			"format": "text",
		},
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"find": map[string]any{
			"defaultDomain": "example.com",
		},
		"input": map[string]any{
			"maxConcurrentFiles": config.DefaultMaxConcurrentFiles,
		},
		"server": map[string]any{
			"name":      "mailfold",
			"transport": "stdio",
		},
	}

	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (a *App) validateConfig(path string) error {
	result, err := config.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return fmt.Errorf("error during validation: %w", err)
	}

	fmt.Fprintf(a.Stdout, "Validating: %s\n", path)

	if len(result.Errors) > 0 {
		fmt.Fprintf(a.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, err := range result.Errors {
			if err.Path != "" {
				fmt.Fprintf(a.Stdout, "  - %s: %s\n", err.Path, err.Message)
			} else {
				fmt.Fprintf(a.Stdout, "  - %s\n", err.Message)
			}
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(a.Stdout, "\nWarnings (%d):\n", len(result.Warnings))
		for _, warn := range result.Warnings {
			if warn.Path != "" {
				fmt.Fprintf(a.Stdout, "  - %s: %s\n", warn.Path, warn.Message)
			} else {
				fmt.Fprintf(a.Stdout, "  - %s\n", warn.Message)
			}
		}
	}

	fmt.Fprintln(a.Stdout)
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		fmt.Fprintln(a.Stdout, "Result: PASS")
	} else if len(result.Errors) == 0 {
		fmt.Fprintln(a.Stdout, "Result: FAIL (warnings present)")
	} else {
		fmt.Fprintln(a.Stdout, "Result: FAIL")
	}

	if len(result.Errors) > 0 || len(result.Warnings) > 0 {
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
	}
	return nil
}
