package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/utils"
	"github.com/spf13/cobra"
)

// ratioCmd represents the ratio command for aspect-ratio estimation.
var ratioCmd = &cobra.Command{
	Use:   "ratio [image files...]",
	Short: "Estimate the true aspect ratio of a document from one or more frames",
	Long: `Estimate the physical aspect ratio of a document page despite
perspective distortion. A single frame yields a single-view estimate;
several frames of the same document are accumulated into a sturdier
multi-frame estimate.

Passing camera intrinsics (--fx, --fy) unlocks the projective estimate,
which recovers the ratio in closed form instead of bounding it from
corner angles.

Examples:
  docshot ratio photo.jpg
  docshot ratio frame1.jpg frame2.jpg frame3.jpg --format json
  docshot ratio photo.jpg --fx 1480 --fy 1480 --cx 960 --cy 540`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runRatioCommand,
}

// sequenceReport is the json payload for a ratio run.
type sequenceReport struct {
	Frames      []*pipeline.FrameResult    `json:"frames"`
	Accumulated *aspect.MultiFrameEstimate `json:"accumulated,omitempty"`
}

func runRatioCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	imgs := make([]image.Image, 0, len(args))
	for _, pth := range args {
		if !utils.IsSupportedImage(pth) {
			return fmt.Errorf("unsupported image format: %s", pth)
		}
		img, _, err := utils.LoadImage(pth)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", pth, err)
		}
		imgs = append(imgs, img)
	}

	cfg := GetConfig()
	analyzerCfg := cfg.ToAnalyzerConfig()

	// Intrinsics flags override whatever the config file resolved.
	if cmd.Flags().Changed("fx") || cmd.Flags().Changed("fy") {
		fx, _ := cmd.Flags().GetFloat64("fx")
		fy, _ := cmd.Flags().GetFloat64("fy")
		cx, _ := cmd.Flags().GetFloat64("cx")
		cy, _ := cmd.Flags().GetFloat64("cy")
		if fx <= 0 || fy <= 0 {
			return fmt.Errorf("invalid intrinsics: fx=%.1f fy=%.1f (focal lengths must be positive)", fx, fy)
		}
		if cx == 0 && cy == 0 {
			b := imgs[0].Bounds()
			cx = float64(b.Dx()) / 2
			cy = float64(b.Dy()) / 2
		}
		analyzerCfg.Intrinsics = &aspect.Intrinsics{Fx: fx, Fy: fy, Cx: cx, Cy: cy}
	}

	analyzer, err := pipeline.NewBuilder().WithConfig(analyzerCfg).Build()
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}
	defer func() {
		if err := analyzer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing analyzer: %v\n", err)
		}
	}()

	frames, multi, err := analyzer.AnalyzeSequence(cmd.Context(), imgs)
	if err != nil {
		return fmt.Errorf("ratio estimation failed: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	var out string
	if format == outputFormatJSON {
		b, err := json.MarshalIndent(sequenceReport{Frames: frames, Accumulated: multi}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		out = string(b) + "\n"
	} else {
		var sb strings.Builder
		for i, fr := range frames {
			if len(frames) > 1 {
				fmt.Fprintf(&sb, "# %s\n", args[i])
			}
			s, err := pipeline.ToText(fr)
			if err != nil {
				return fmt.Errorf("format text failed: %w", err)
			}
			sb.WriteString(s)
		}
		if multi != nil {
			fmt.Fprintf(&sb, "sequence ratio %.4f over %d frames (confidence %.2f)\n",
				multi.Ratio, multi.FrameCount, multi.Confidence)
		}
		out = sb.String()
	}

	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile)
		return nil
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// GetRatioCommand returns the ratio command for testing purposes.
func GetRatioCommand() *cobra.Command {
	return ratioCmd
}

func init() {
	rootCmd.AddCommand(ratioCmd)

	ratioCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	ratioCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	// Camera intrinsics in original-frame pixel units
	ratioCmd.Flags().Float64("fx", 0, "focal length in x (pixels)")
	ratioCmd.Flags().Float64("fy", 0, "focal length in y (pixels)")
	ratioCmd.Flags().Float64("cx", 0, "principal point x (pixels, default: image center)")
	ratioCmd.Flags().Float64("cy", 0, "principal point y (pixels, default: image center)")
}
