package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docshot.yaml")

	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"config", "init", path})
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote default configuration")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "detection:")
	assert.Contains(t, content, "aspect:")
	assert.Contains(t, content, "server:")
}

func TestConfigInitCommand_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"config", "init", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Untouched
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(data))
}

func TestConfigInitCommand_Force(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"config", "init", path, "--force"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "detection:")
}

func TestConfigShowCommand(t *testing.T) {
	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"config", "show"})
	require.NoError(t, err)
	assert.Contains(t, output, "log_level")
	assert.Contains(t, output, "detection")
}

func TestConfigPathsCommand(t *testing.T) {
	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"config", "paths"})
	require.NoError(t, err)
	assert.Contains(t, output, ".")
	assert.Contains(t, output, "/etc/docshot")
}
