package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docshot/docshot/internal/config"
	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSceneImage renders the default synthetic document scene to path.
func writeSceneImage(t *testing.T, path string) {
	t.Helper()
	testutil.SaveImage(t, testutil.DefaultSceneSpec().Render(), path)
}

func TestDetectCommand_NoArgs(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"detect"})
	require.Error(t, err)
}

func TestDetectCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "doc.png")
	writeSceneImage(t, imgPath)
	outPath := filepath.Join(dir, "results.json")

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"detect", imgPath, "--format", "json", "--output", outPath, "--quiet"})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report struct {
		Images []struct {
			File     string                `json:"file"`
			Error    string                `json:"error"`
			Analysis *pipeline.FrameResult `json:"analysis"`
		} `json:"images"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Images, 1)
	assert.Equal(t, imgPath, report.Images[0].File)
	require.NotNil(t, report.Images[0].Analysis)
	assert.True(t, report.Images[0].Analysis.Detection.Found)
}

func TestDetectCommand_DirectoryCSV(t *testing.T) {
	dir := t.TempDir()
	writeSceneImage(t, filepath.Join(dir, "a.png"))
	writeSceneImage(t, filepath.Join(dir, "b.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o600))
	outPath := filepath.Join(t.TempDir(), "results.csv")

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"detect", dir, "--format", "csv", "--output", outPath, "--quiet"})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header plus one row per image")
	assert.Contains(t, lines[0], "file,found")
}

func TestDetectCommand_MissingPath(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"detect", filepath.Join(t.TempDir(), "nope.png"), "--quiet"})
	require.Error(t, err)
}

// Keep this last in the file: it marks flags as changed on the shared
// detect command instance.
func TestConfigToBatchConfig_FlagOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd := GetDetectCommand()
	require.NoError(t, cmd.Flags().Set("format", "csv"))
	require.NoError(t, cmd.Flags().Set("workers", "3"))
	require.NoError(t, cmd.Flags().Set("continue-on-error", "true"))

	batchConfig := configToBatchConfig(&cfg, cmd)
	assert.Equal(t, "csv", batchConfig.Format)
	assert.Equal(t, 3, batchConfig.Workers)
	assert.True(t, batchConfig.ContinueOnError)
	assert.Positive(t, batchConfig.Analyzer.Edges.WorkingWidth)
}
