package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/docshot/docshot/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatioCommand_NoArgs(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"ratio"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files provided")
}

func TestRatioCommand_TextOutput(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "frame.png")
	writeSceneImage(t, imgPath)

	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"ratio", imgPath})
	require.NoError(t, err)
	assert.Contains(t, output, "aspect ratio")
	assert.Contains(t, output, "scene=")
}

func TestRatioCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "frame.png")
	writeSceneImage(t, imgPath)
	outPath := filepath.Join(dir, "ratio.json")

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"ratio", imgPath, "--format", "json", "--output", outPath})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report struct {
		Frames []*pipeline.FrameResult `json:"frames"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Frames, 1)
	require.NotNil(t, report.Frames[0])
	assert.True(t, report.Frames[0].Detection.Found)
	require.NotNil(t, report.Frames[0].Estimate)
	assert.InDelta(t, 0.77, report.Frames[0].Estimate.Ratio, 0.12)
}

func TestRatioCommand_UnsupportedFile(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"ratio", "notes.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

// Keep this last in the file: the intrinsics flags stay marked as
// changed on the shared command instance afterwards.
func TestRatioCommand_InvalidIntrinsics(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "frame.png")
	writeSceneImage(t, imgPath)

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"ratio", imgPath, "--fx=-100", "--fy=800"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid intrinsics")
}
