package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/utils"
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command for producing rectified page images.
var scanCmd = &cobra.Command{
	Use:   "scan [image file]",
	Short: "Detect a document and save an upright, perspective-corrected image",
	Long: `Detect the document boundary in a photo, estimate its true aspect
ratio and warp it into an upright rectified image. The output format
follows the output file extension (PNG or JPEG).

Examples:
  docshot scan photo.jpg
  docshot scan photo.jpg -o page.png
  docshot scan whiteboard.jpg -o notes.jpg --output-long 2048`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runScanCommand,
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	pth := args[0]
	if !utils.IsSupportedImage(pth) {
		return fmt.Errorf("unsupported image format: %s", pth)
	}
	img, meta, err := utils.LoadImage(pth)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", pth, err)
	}

	cfg := GetConfig()
	analyzerCfg := cfg.ToAnalyzerConfig()

	builder := pipeline.NewBuilder().WithConfig(analyzerCfg)
	if cmd.Flags().Changed("output-long") {
		long, _ := cmd.Flags().GetInt("output-long")
		builder = builder.WithOutputLong(long)
	}
	analyzer, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}
	defer func() {
		if err := analyzer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing analyzer: %v\n", err)
		}
	}()

	fr, err := analyzer.AnalyzeFrame(cmd.Context(), img)
	if err != nil {
		return fmt.Errorf("detection failed for %s: %w", pth, err)
	}
	quad, ok := fr.Quad()
	if !ok {
		return fmt.Errorf("no document found in %s", pth)
	}

	rectified, err := analyzer.RectifyDocument(img, quad, fr.Estimate)
	if err != nil {
		return fmt.Errorf("rectification failed: %w", err)
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = scanOutputPath(meta.Path, cfg.Batch.OutputDir)
	}
	if err := utils.SaveImage(rectified, outPath); err != nil {
		return fmt.Errorf("failed to save %s: %w", outPath, err)
	}

	b := rectified.Bounds()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %dx%d scan to %s\n", b.Dx(), b.Dy(), outPath)
	return nil
}

// scanOutputPath derives the default output filename from the input,
// placed in outputDir when one is configured.
func scanOutputPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_scan.png"
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}

// GetScanCommand returns the scan command for testing purposes.
func GetScanCommand() *cobra.Command {
	return scanCmd
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "output image path (default: <input>_scan.png)")
	scanCmd.Flags().Int("output-long", 0, "long side of the rectified output in pixels")
}
