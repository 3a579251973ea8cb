package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dgellow/mailfold/internal/log"
)

// ValidationResult holds validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// ValidationError represents a validation issue
type ValidationError struct {
	Path    string
	Message string
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

var knownSections = map[string]bool{
	"version": true,
	"output":  true,
	"log":     true,
	"find":    true,
	"input":   true,
	"server":  true,
}

// ValidateFile validates a config file structure without requiring env vars
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ValidateBytes(data), nil
}

// ValidateBytes validates raw config JSON
func ValidateBytes(data []byte) *ValidationResult {
	result := &ValidationResult{}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
		})
		return result
	}

	checkBashStyleSyntax(rawConfig, "", result)

	version, ok := rawConfig["version"].(string)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("version field is required. Hint: Add \"version\": \"%s\"", VersionPrefix),
		})
	} else if !strings.HasPrefix(version, VersionPrefix) {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("unsupported version '%s' - use '%s'", version, VersionPrefix),
		})
	}

	for key := range rawConfig {
		if !knownSections[key] {
			result.Warnings = append(result.Warnings, ValidationError{
				Path:    key,
				Message: "unknown field will be ignored",
			})
		}
	}

	validateOutputStructure(rawConfig, result)
	validateLogStructure(rawConfig, result)
	validateFindStructure(rawConfig, result)
	validateInputStructure(rawConfig, result)
	validateServerStructure(rawConfig, result)

	return result
}

func section(rawConfig map[string]any, name string, result *ValidationResult) (map[string]any, bool) {
	value, exists := rawConfig[name]
	if !exists {
		return nil, false
	}
	m, ok := value.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    name,
			Message: fmt.Sprintf("%s must be an object", name),
		})
		return nil, false
	}
	return m, true
}

func validateOutputStructure(rawConfig map[string]any, result *ValidationResult) {
	output, ok := section(rawConfig, "output", result)
	if !ok {
		return
	}
	if format, exists := output["format"]; exists {
		s, _ := format.(string)
		if s != string(OutputFormatText) && s != string(OutputFormatJSON) {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "output.format",
				Message: fmt.Sprintf("invalid format %v - must be 'text' or 'json'", format),
			})
		}
	}
}

func validateLogStructure(rawConfig map[string]any, result *ValidationResult) {
	logSection, ok := section(rawConfig, "log", result)
	if !ok {
		return
	}
	if level, exists := logSection["level"]; exists {
		s, isString := level.(string)
		if !isString || log.ValidateLevel(s) != nil {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "log.level",
				Message: fmt.Sprintf("invalid level %v - must be one of error, warn, info, debug, trace", level),
			})
		}
	}
	if format, exists := logSection["format"]; exists {
		s, isString := format.(string)
		if !isString || log.ValidateFormat(s) != nil {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "log.format",
				Message: fmt.Sprintf("invalid format %v - must be 'text' or 'json'", format),
			})
		}
	}
}

func validateFindStructure(rawConfig map[string]any, result *ValidationResult) {
	find, ok := section(rawConfig, "find", result)
	if !ok {
		return
	}
	domain, exists := find["defaultDomain"]
	if !exists {
		return
	}
	switch v := domain.(type) {
	case string:
		if strings.Contains(v, "@") {
			result.Warnings = append(result.Warnings, ValidationError{
				Path:    "find.defaultDomain",
				Message: "domain contains '@' and will never match. Hint: use the part after '@', e.g. \"example.com\"",
			})
		}
	case map[string]any:
		if _, hasEnv := v["$env"]; !hasEnv {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "find.defaultDomain",
				Message: "reference must use {\"$env\": \"VAR_NAME\"} format",
			})
		}
	default:
		result.Errors = append(result.Errors, ValidationError{
			Path:    "find.defaultDomain",
			Message: "must be a string or {\"$env\": \"VAR_NAME\"} reference",
		})
	}
}

func validateInputStructure(rawConfig map[string]any, result *ValidationResult) {
	input, ok := section(rawConfig, "input", result)
	if !ok {
		return
	}
	if n, exists := input["maxConcurrentFiles"]; exists {
		f, isNumber := n.(float64)
		if !isNumber || f < 0 || f != float64(int(f)) {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "input.maxConcurrentFiles",
				Message: fmt.Sprintf("must be a non-negative integer, got %v", n),
			})
		}
	}
}

func validateServerStructure(rawConfig map[string]any, result *ValidationResult) {
	server, ok := section(rawConfig, "server", result)
	if !ok {
		return
	}
	if transport, exists := server["transport"]; exists {
		s, _ := transport.(string)
		switch TransportType(s) {
		case TransportStdio:
			if _, hasAddr := server["addr"]; hasAddr {
				result.Warnings = append(result.Warnings, ValidationError{
					Path:    "server.addr",
					Message: "addr is ignored with stdio transport",
				})
			}
		case TransportStreamable:
		default:
			result.Errors = append(result.Errors, ValidationError{
				Path:    "server.transport",
				Message: fmt.Sprintf("invalid transport %v - must be 'stdio' or 'streamable-http'", transport),
			})
		}
	}
}

var bashStyleRegex = regexp.MustCompile(`\$\{?[A-Z_][A-Z0-9_]*\}?`)

func checkBashStyleSyntax(value any, path string, result *ValidationResult) {
	switch v := value.(type) {
	case string:
		if matches := bashStyleRegex.FindAllString(v, -1); len(matches) > 0 {
			for _, match := range matches {
				varName := strings.Trim(match, "${}")
				result.Warnings = append(result.Warnings, ValidationError{
					Path:    path,
					Message: fmt.Sprintf("found bash-style syntax '%s' - use {\"$env\": \"%s\"} instead", match, varName),
				})
			}
		}
	case map[string]any:
		// Skip if this is already an env ref
		if _, hasEnv := v["$env"]; hasEnv {
			return
		}

		for key, val := range v {
			newPath := path
			if newPath == "" {
				newPath = key
			} else {
				newPath = path + "." + key
			}
			checkBashStyleSyntax(val, newPath, result)
		}
	case []any:
		for i, item := range v {
			newPath := fmt.Sprintf("%s[%d]", path, i)
			checkBashStyleSyntax(item, newPath, result)
		}
	}
}
