package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/docshot/docshot/internal/pipeline"
)

// formatBatchResults renders the batch results in the requested format.
func formatBatchResults(results []*pipeline.FrameResult, imagePaths []string, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(results, imagePaths)
	case "csv":
		return formatCSV(results, imagePaths)
	default: // text
		return formatText(results, imagePaths)
	}
}

type fileResult struct {
	File     string                `json:"file"`
	Error    string                `json:"error,omitempty"`
	Analysis *pipeline.FrameResult `json:"analysis,omitempty"`
}

// formatJSON renders one object per file with its frame analysis.
func formatJSON(results []*pipeline.FrameResult, imagePaths []string) (string, error) {
	out := struct {
		Images []fileResult `json:"images"`
	}{
		Images: make([]fileResult, len(results)),
	}

	for i, res := range results {
		out.Images[i] = fileResult{File: imagePaths[i], Analysis: res}
		if res == nil {
			out.Images[i].Error = "processing failed"
		}
	}

	bts, err := json.MarshalIndent(out, "", "  ")
	return string(bts), err
}

// formatCSV renders one row per file with detection and ratio columns.
func formatCSV(results []*pipeline.FrameResult, imagePaths []string) (string, error) {
	rows := [][]string{{
		"file", "found", "scene", "strategy", "confidence", "ratio", "snapped_to",
		"tl_x", "tl_y", "tr_x", "tr_y", "br_x", "br_y", "bl_x", "bl_y",
	}}

	for i, res := range results {
		rows = append(rows, csvRow(imagePaths[i], res))
	}

	var output strings.Builder
	writer := csv.NewWriter(&output)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), nil
}

func csvRow(file string, res *pipeline.FrameResult) []string {
	row := []string{file, "false", "", "", "0", "0", ""}
	coords := make([]string, 8)
	for i := range coords {
		coords[i] = "0"
	}

	if res != nil {
		row[1] = strconv.FormatBool(res.Detection.Found)
		row[2] = res.Scene
		row[3] = res.Strategy
		row[4] = fmt.Sprintf("%.3f", res.Detection.Confidence)
		if est := res.Estimate; est != nil {
			row[5] = fmt.Sprintf("%.4f", est.Ratio)
			row[6] = est.SnappedTo
		}
		for i, c := range res.Detection.Corners {
			coords[2*i] = fmt.Sprintf("%.1f", c.X)
			coords[2*i+1] = fmt.Sprintf("%.1f", c.Y)
		}
	}

	return append(row, coords...)
}

// formatText renders per-file plain text reports.
func formatText(results []*pipeline.FrameResult, imagePaths []string) (string, error) {
	var output strings.Builder
	for i, res := range results {
		if i > 0 {
			output.WriteString("\n")
		}
		fmt.Fprintf(&output, "# %s\n", imagePaths[i])
		if res == nil {
			output.WriteString("processing failed\n")
			continue
		}
		text, err := pipeline.ToText(res)
		if err != nil {
			return "", err
		}
		output.WriteString(text)
	}
	return output.String(), nil
}
