package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name          string
		config        string
		wantErrors    []string
		wantWarnings  []string
		wantErrCount  int
		wantWarnCount int
	}{
		{
			name: "valid_full_config",
			config: `{
				"version": "v0.0.1",
				"output": {"format": "json"},
				"log": {"level": "debug", "format": "json"},
				"find": {"defaultDomain": {"$env": "MAILFOLD_DOMAIN"}},
				"input": {"maxConcurrentFiles": 8},
				"server": {"name": "mailfold", "transport": "streamable-http", "addr": ":8080"}
			}`,
			wantErrCount:  0,
			wantWarnCount: 0,
		},
		{
			name:          "missing_version",
			config:        `{"output": {"format": "text"}}`,
			wantErrors:    []string{"version field is required"},
			wantErrCount:  1,
			wantWarnCount: 0,
		},
		{
			name:          "wrong_version",
			config:        `{"version": "v1.0.0"}`,
			wantErrors:    []string{"unsupported version 'v1.0.0'"},
			wantErrCount:  1,
			wantWarnCount: 0,
		},
		{
			name:          "invalid_json",
			config:        `{"version": "v0.0.1",}`,
			wantErrors:    []string{"invalid JSON"},
			wantErrCount:  1,
			wantWarnCount: 0,
		},
		{
			name:          "bash_style_env",
			config:        `{"version": "v0.0.1", "find": {"defaultDomain": "${MAILFOLD_DOMAIN}"}}`,
			wantWarnings:  []string{"found bash-style syntax '${MAILFOLD_DOMAIN}'"},
			wantErrCount:  0,
			wantWarnCount: 1,
		},
		{
			name:          "domain_with_separator",
			config:        `{"version": "v0.0.1", "find": {"defaultDomain": "user@example.com"}}`,
			wantWarnings:  []string{"will never match"},
			wantErrCount:  0,
			wantWarnCount: 1,
		},
		{
			name:          "bad_reference",
			config:        `{"version": "v0.0.1", "find": {"defaultDomain": {"$file": "x"}}}`,
			wantErrors:    []string{"{\"$env\": \"VAR_NAME\"}"},
			wantErrCount:  1,
			wantWarnCount: 0,
		},
		{
			name:          "unknown_section",
			config:        `{"version": "v0.0.1", "proxy": {}}`,
			wantWarnings:  []string{"unknown field"},
			wantErrCount:  0,
			wantWarnCount: 1,
		},
		{
			name: "bad_values",
			config: `{
				"version": "v0.0.1",
				"output": {"format": "csv"},
				"log": {"level": "chatty", "format": 3},
				"input": {"maxConcurrentFiles": -2},
				"server": {"transport": "sse"}
			}`,
			wantErrors: []string{
				"invalid format csv",
				"invalid level chatty",
				"invalid format 3",
				"must be a non-negative integer",
				"invalid transport sse",
			},
			wantErrCount:  5,
			wantWarnCount: 0,
		},
		{
			name:          "section_not_object",
			config:        `{"version": "v0.0.1", "output": "json"}`,
			wantErrors:    []string{"output must be an object"},
			wantErrCount:  1,
			wantWarnCount: 0,
		},
		{
			name:          "addr_with_stdio",
			config:        `{"version": "v0.0.1", "server": {"transport": "stdio", "addr": ":1"}}`,
			wantWarnings:  []string{"addr is ignored"},
			wantErrCount:  0,
			wantWarnCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o600))

			result, err := ValidateFile(path)
			require.NoError(t, err)

			assert.Len(t, result.Errors, tt.wantErrCount, "errors: %+v", result.Errors)
			assert.Len(t, result.Warnings, tt.wantWarnCount, "warnings: %+v", result.Warnings)
			assert.Equal(t, tt.wantErrCount == 0, result.IsValid())

			for _, want := range tt.wantErrors {
				assert.True(t, containsMessage(result.Errors, want), "missing error %q in %+v", want, result.Errors)
			}
			for _, want := range tt.wantWarnings {
				assert.True(t, containsMessage(result.Warnings, want), "missing warning %q in %+v", want, result.Warnings)
			}
		})
	}
}

func TestValidateFile_MissingFile(t *testing.T) {
	_, err := ValidateFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "reading config file")
}

func containsMessage(issues []ValidationError, want string) bool {
	for _, issue := range issues {
		if strings.Contains(issue.Message, want) {
			return true
		}
	}
	return false
}
