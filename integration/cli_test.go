package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIConfigInitGeneratesValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "generated-config.json")

	t.Run("generate and validate config", func(t *testing.T) {
		res := runMailfold(t, "", "-config-init", configPath)
		require.Equal(t, 0, res.exitCode, "config-init should succeed: %s", res.stderr)
		assert.Contains(t, res.stdout, "Generated default config at:", "should report generation")

		fi, err := os.Stat(configPath)
		require.NoError(t, err, "config file should exist")
		require.Greater(t, fi.Size(), int64(0), "config file should not be empty")

		res = runMailfold(t, "", "-config", configPath, "-validate")
		require.Equal(t, 0, res.exitCode, "validate should succeed for config-init generated file")
		assert.Contains(t, res.stdout, "Result: PASS", "validation should pass")
	})
}

func TestCLICommands(t *testing.T) {
	tmpDir := t.TempDir()
	listPath := filepath.Join(tmpDir, "rsvps.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("a@X.com\r\nno-at-sign\r\nb@x.COM\r\nA@x.com\r\nc@y.com\r\n"), 0o600))

	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		want     string
	}{
		{
			name:     "dedupe file",
			args:     []string{"dedupe", listPath},
			wantCode: 0,
			want:     "a@X.com\nb@x.COM\nc@y.com\n",
		},
		{
			name:     "find in file",
			args:     []string{"find", "-domain", "Y.COM", listPath},
			wantCode: 0,
			want:     "4\n",
		},
		{
			name:     "find misses",
			args:     []string{"-format", "json", "find", "-domain", "z.com", listPath},
			wantCode: 1,
			want:     "{\"index\":-1,\"found\":false}\n",
		},
		{
			name:     "count file",
			args:     []string{"count", listPath},
			wantCode: 0,
			want:     "x.com\t3\ny.com\t1\n",
		},
		{
			name:     "count stdin json",
			stdin:    "a@straße.de\nb@STRASSE.DE\n",
			args:     []string{"-format", "json", "count"},
			wantCode: 0,
			want:     "[{\"domain\":\"strasse.de\",\"count\":2}]\n",
		},
		{
			name:     "empty stdin",
			args:     []string{"-format", "json", "dedupe"},
			wantCode: 0,
			want:     "[]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runMailfold(t, tt.stdin, tt.args...)
			assert.Equal(t, tt.wantCode, res.exitCode, res.stderr)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestCLILogsStayOffStdout(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	res := runMailfold(t, "alice@example.com\n", "find", "-domain", "example.com")

	require.Equal(t, 0, res.exitCode)
	assert.Equal(t, "0\n", res.stdout)
	assert.Contains(t, res.stderr, `"component":"cli"`)
	assert.NotContains(t, res.stderr, "alice@example.com")
}
