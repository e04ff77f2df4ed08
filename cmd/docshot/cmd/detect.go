package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/docshot/docshot/internal/batch"
	"github.com/docshot/docshot/internal/config"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// detectCmd represents the detect command for locating document boundaries.
var detectCmd = &cobra.Command{
	Use:   "detect [files or directories...]",
	Short: "Detect document boundaries in images",
	Long: `Detect the quadrilateral boundary of a document page in one or more
images and estimate its true aspect ratio. Directories are scanned for
supported image files and processed in parallel.

Supported formats: JPEG, PNG, BMP

Examples:
  docshot detect photo.jpg
  docshot detect scans/ --recursive --workers 8
  docshot detect *.jpg --format json --output results.json
  docshot detect scans/ --overlay-dir overlays/ --stats`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runDetectCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
// CLI flags will override config file values through Viper's precedence system.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	batchConfig := &batch.Config{}

	// Detection settings come straight from the centralized config
	batchConfig.Analyzer = cfg.ToAnalyzerConfig()

	// Output settings - use centralized config with CLI flag overrides
	batchConfig.Format = cfg.Output.Format
	if cmd.Flags().Changed("format") {
		batchConfig.Format, _ = cmd.Flags().GetString("format")
	}

	batchConfig.OutputFile = cfg.Output.File
	if cmd.Flags().Changed("output") {
		batchConfig.OutputFile, _ = cmd.Flags().GetString("output")
	}

	batchConfig.OverlayDir = cfg.Output.OverlayDir
	if cmd.Flags().Changed("overlay-dir") {
		batchConfig.OverlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}

	// Parallel processing settings
	batchConfig.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("workers")
	}

	batchConfig.ContinueOnError = cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		batchConfig.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	// File discovery settings - these are typically CLI-only
	batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")

	// Progress settings - these are typically CLI-only
	batchConfig.ShowProgress, _ = cmd.Flags().GetBool("progress")
	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")
	batchConfig.ShowStats, _ = cmd.Flags().GetBool("stats")
	batchConfig.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")

	return batchConfig
}

func runDetectCommand(cmd *cobra.Command, args []string) error {
	// Get configuration from centralized system (includes CLI flags, config file, env vars, and defaults)
	cfg := GetConfig()

	// Map to batch configuration
	batchConfig := configToBatchConfig(cfg, cmd)

	if !batchConfig.Quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Processing %d input(s)...\n", len(args))
	}

	// Process batch
	result, err := batch.ProcessBatch(cmd.Context(), args, batchConfig)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	// Save results
	if err := result.SaveResults(batchConfig.Format, batchConfig.OutputFile, batchConfig.Quiet); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	// Print stats
	if batchConfig.ShowStats {
		result.PrintStats(batchConfig.Quiet)
	}

	return nil
}

// GetDetectCommand returns the detect command for testing purposes.
func GetDetectCommand() *cobra.Command {
	return detectCmd
}

func init() {
	rootCmd.AddCommand(detectCmd)

	// Output flags
	detectCmd.Flags().StringP("format", "f", "text", "output format: text, json, csv")
	detectCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	detectCmd.Flags().String("overlay-dir", "", "directory to save boundary overlay images")

	// Parallel processing flags
	detectCmd.Flags().IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	detectCmd.Flags().Bool("continue-on-error", false, "keep processing remaining images after a failure")

	// File discovery flags
	detectCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	detectCmd.Flags().StringSlice("include", []string{}, "file patterns to include (default: supported image extensions)")
	detectCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")

	// Progress and monitoring flags
	detectCmd.Flags().Bool("progress", false, "show progress on stdout")
	detectCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
	detectCmd.Flags().Bool("stats", false, "show processing statistics")
	detectCmd.Flags().Duration("progress-interval", 500*time.Millisecond, "progress update interval")
}
