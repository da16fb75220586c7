package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEnvFile points NESTMIND_ENV_FILE at a fresh file and clears keys so
// that t.Setenv restores them afterwards.
func writeEnvFile(t *testing.T, content string, keys ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(gatewayEnvFilePathEnv, path)
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return path
}

func TestLoadEnvFileParsesDotenvSyntax(t *testing.T) {
	path := writeEnvFile(t, `
# provider
export NESTMIND_PROVIDER=bedrock
NESTMIND_MODEL="anthropic.claude-3-sonnet-20240229-v1:0"
NESTMIND_GREETING='hey there, {{name}}'
NESTMIND_MULTILINE="first\nsecond"
NESTMIND_PORT=4100 # local port
NESTMIND_BASE=http://localhost:${NESTMIND_PORT}
`, "NESTMIND_PROVIDER", "NESTMIND_MODEL", "NESTMIND_GREETING", "NESTMIND_MULTILINE", "NESTMIND_PORT", "NESTMIND_BASE")

	gotPath, loaded, err := loadEnvFile()
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, 6, loaded)
	assert.Equal(t, "bedrock", os.Getenv("NESTMIND_PROVIDER"))
	assert.Equal(t, "anthropic.claude-3-sonnet-20240229-v1:0", os.Getenv("NESTMIND_MODEL"))
	assert.Equal(t, "hey there, {{name}}", os.Getenv("NESTMIND_GREETING"))
	assert.Equal(t, "first\nsecond", os.Getenv("NESTMIND_MULTILINE"))
	assert.Equal(t, "4100", os.Getenv("NESTMIND_PORT"))
	assert.Equal(t, "http://localhost:4100", os.Getenv("NESTMIND_BASE"))
}

func TestLoadEnvFileKeepsProcessEnvironment(t *testing.T) {
	writeEnvFile(t, "NESTMIND_PROVIDER=openai\nNESTMIND_TELEMETRY=redis\n", "NESTMIND_TELEMETRY")
	t.Setenv("NESTMIND_PROVIDER", "anthropic")

	_, loaded, err := loadEnvFile()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, "anthropic", os.Getenv("NESTMIND_PROVIDER"))
	assert.Equal(t, "redis", os.Getenv("NESTMIND_TELEMETRY"))
}

func TestLoadEnvFileDefaultsToDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(gatewayEnvFilePathEnv, "")

	path, loaded, err := loadEnvFile()
	require.NoError(t, err)
	assert.Equal(t, ".env", path)
	assert.Zero(t, loaded)
}

func TestLoadEnvFileMissingExplicitPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")
	t.Setenv(gatewayEnvFilePathEnv, missing)

	path, loaded, err := loadEnvFile()
	require.NoError(t, err)
	assert.Equal(t, missing, path)
	assert.Zero(t, loaded)
}

func TestLoadEnvFileUnreadablePathIsAnError(t *testing.T) {
	// a directory exists but cannot be parsed as a file
	t.Setenv(gatewayEnvFilePathEnv, t.TempDir())

	_, _, err := loadEnvFile()
	assert.Error(t, err)
}
