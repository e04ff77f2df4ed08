package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLoader builds a loader over a private viper instance so tests
// do not leak state through the global one.
func newTestLoader() *Loader {
	return &Loader{v: viper.New()}
}

// isolateHome points the home and XDG search paths into the temp dir so
// a developer's real docshot.yaml cannot leak into the test.
func isolateHome(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	isolateHome(t, dir)
	t.Chdir(dir)

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadWithFile_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
detection:
  working_width: 320
server:
  port: 9090
`), 0o600))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 320, cfg.Detection.WorkingWidth)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, 25, cfg.Detection.BudgetMs)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoadWithFile_EmptyPathFallsBack(t *testing.T) {
	dir := t.TempDir()
	isolateHome(t, dir)
	t.Chdir(dir)

	cfg, err := newTestLoader().LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadWithFile_MissingFile(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithFile_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detection: [unclosed\n"), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadWithFile_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	isolateHome(t, dir)
	t.Chdir(dir)
	t.Setenv("DOCSHOT_DETECTION_WORKING_WIDTH", "320")
	t.Setenv("DOCSHOT_LOG_LEVEL", "warn")

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Detection.WorkingWidth)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docshot.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestGetConfigSearchPaths(t *testing.T) {
	dir := t.TempDir()
	isolateHome(t, dir)

	paths := GetConfigSearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/etc/docshot")
	assert.Contains(t, paths, filepath.Join(dir, "xdg", "docshot"))
}

func TestLoader_GetSet(t *testing.T) {
	l := newTestLoader()
	l.Set("output.format", "json")
	assert.Equal(t, "json", l.Get("output.format"))
}
