package batch

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createFoundResult builds a frame result with an accepted detection
// and a snapped ratio, the shape a clean frontal capture produces.
func createFoundResult(confidence float64) *pipeline.FrameResult {
	return &pipeline.FrameResult{
		Width:    640,
		Height:   480,
		Scene:    "normal",
		Strategy: "contour",
		Detection: pipeline.DetectionResult{
			Found:      true,
			Confidence: confidence,
			Corners: []pipeline.Corner{
				{X: 170, Y: 40}, {X: 470, Y: 40}, {X: 470, Y: 440}, {X: 170, Y: 440},
			},
		},
		Estimate: &aspect.Estimate{
			Ratio:      0.75,
			Confidence: 0.9,
			SnappedTo:  "letter",
		},
		ElapsedMs: 4.2,
	}
}

func createMissResult() *pipeline.FrameResult {
	return &pipeline.FrameResult{Width: 640, Height: 480, Scene: "low_contrast"}
}

func TestFormatBatchResults_Text(t *testing.T) {
	results := []*pipeline.FrameResult{
		createFoundResult(0.92),
		createMissResult(),
	}
	imagePaths := []string{"/path/image1.png", "/path/image2.png"}

	output, err := formatBatchResults(results, imagePaths, "text")
	require.NoError(t, err)

	assert.Contains(t, output, "# /path/image1.png")
	assert.Contains(t, output, "# /path/image2.png")
	assert.Contains(t, output, "strategy=contour")
	assert.Contains(t, output, "no document found")
}

func TestFormatBatchResults_TextFailedSlot(t *testing.T) {
	results := []*pipeline.FrameResult{nil}
	imagePaths := []string{"/path/broken.png"}

	output, err := formatBatchResults(results, imagePaths, "text")
	require.NoError(t, err)

	assert.Contains(t, output, "# /path/broken.png")
	assert.Contains(t, output, "processing failed")
}

func TestFormatBatchResults_JSON(t *testing.T) {
	results := []*pipeline.FrameResult{
		createFoundResult(0.92),
		nil,
	}
	imagePaths := []string{"/path/test.png", "/path/broken.png"}

	output, err := formatBatchResults(results, imagePaths, "json")
	require.NoError(t, err)

	var parsed struct {
		Images []struct {
			File     string                `json:"file"`
			Error    string                `json:"error"`
			Analysis *pipeline.FrameResult `json:"analysis"`
		} `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))
	require.Len(t, parsed.Images, 2)

	assert.Equal(t, "/path/test.png", parsed.Images[0].File)
	require.NotNil(t, parsed.Images[0].Analysis)
	assert.True(t, parsed.Images[0].Analysis.Detection.Found)
	assert.Equal(t, "contour", parsed.Images[0].Analysis.Strategy)

	assert.Equal(t, "/path/broken.png", parsed.Images[1].File)
	assert.Equal(t, "processing failed", parsed.Images[1].Error)
	assert.Nil(t, parsed.Images[1].Analysis)
}

func TestFormatBatchResults_CSV(t *testing.T) {
	results := []*pipeline.FrameResult{createFoundResult(0.85)}
	imagePaths := []string{"/path/test.png"}

	output, err := formatBatchResults(results, imagePaths, "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "file")
	assert.Contains(t, lines[0], "found")
	assert.Contains(t, lines[0], "ratio")
	assert.Contains(t, lines[0], "tl_x")

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, 15)
	assert.Equal(t, "/path/test.png", fields[0])
	assert.Equal(t, "true", fields[1])
	assert.Equal(t, "normal", fields[2])
	assert.Equal(t, "contour", fields[3])
	assert.Equal(t, "0.850", fields[4])
	assert.Equal(t, "0.7500", fields[5])
	assert.Equal(t, "letter", fields[6])
	assert.Equal(t, "170.0", fields[7])
	assert.Equal(t, "40.0", fields[8])
}

func TestFormatBatchResults_CSVFailedSlot(t *testing.T) {
	results := []*pipeline.FrameResult{nil}
	imagePaths := []string{"/path/broken.png"}

	output, err := formatBatchResults(results, imagePaths, "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)

	fields := strings.Split(lines[1], ",")
	assert.Equal(t, "/path/broken.png", fields[0])
	assert.Equal(t, "false", fields[1])
}

func TestFormatBatchResults_DefaultsToText(t *testing.T) {
	results := []*pipeline.FrameResult{createFoundResult(0.9)}
	imagePaths := []string{"/path/test.png"}

	output, err := formatBatchResults(results, imagePaths, "")
	require.NoError(t, err)
	assert.Contains(t, output, "# /path/test.png")
}
