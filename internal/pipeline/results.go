package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ToJSON serializes a single frame result to pretty JSON.
func ToJSON(fr *FrameResult) (string, error) {
	if fr == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(fr, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONMulti serializes multiple frame results to pretty JSON. Nil
// entries (failed batch slots) are kept so indices line up with input.
func ToJSONMulti(results []*FrameResult) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToText renders a frame result as a short human-readable report.
func ToText(fr *FrameResult) (string, error) {
	if fr == nil {
		return "", errors.New("nil result")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "frame %dx%d scene=%s", fr.Width, fr.Height, fr.Scene)
	if !fr.Detection.Found {
		sb.WriteString(" no document found")
		if fr.Partial {
			sb.WriteString(" (partial evidence at frame border)")
		}
		sb.WriteString("\n")
		return sb.String(), nil
	}

	fmt.Fprintf(&sb, " strategy=%s confidence=%.2f\n", fr.Strategy, fr.Detection.Confidence)
	for i, c := range fr.Detection.Corners {
		fmt.Fprintf(&sb, "  corner[%d] = (%.1f, %.1f)\n", i, c.X, c.Y)
	}
	if est := fr.Estimate; est != nil {
		fmt.Fprintf(&sb, "  aspect ratio %.4f (%s, severity %.1f°, confidence %.2f)",
			est.Ratio, est.Method, est.Severity, est.Confidence)
		if est.SnappedTo != "" {
			fmt.Fprintf(&sb, " snapped to %s", est.SnappedTo)
		}
		if est.VerifiedByHomography {
			sb.WriteString(" [verified]")
		}
		sb.WriteString("\n")
	}
	if acc := fr.Accumulated; acc != nil {
		fmt.Fprintf(&sb, "  accumulated ratio %.4f over %d frames (confidence %.2f)\n",
			acc.Ratio, acc.FrameCount, acc.Confidence)
	}
	return sb.String(), nil
}
