package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docshot/docshot/internal/pdf"
	"github.com/docshot/docshot/internal/pipeline"
	"github.com/spf13/cobra"
)

// pdfCmd represents the pdf command for detecting documents inside PDFs.
var pdfCmd = &cobra.Command{
	Use:   "pdf [pdf files...]",
	Short: "Detect document boundaries in images embedded in PDF files",
	Long: `Extract the photographed pages embedded in PDF files and run
boundary detection and aspect-ratio estimation on each one. Vector
content is ignored; only raster images are analyzed.

Examples:
  docshot pdf scanned.pdf
  docshot pdf scanned.pdf --pages 1-5 --format json
  docshot pdf protected.pdf --password secret`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runPDFCommand,
}

func runPDFCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}
	for _, file := range args {
		if strings.ToLower(filepath.Ext(file)) != ".pdf" {
			return fmt.Errorf("unsupported file format: %s (expected .pdf)", file)
		}
	}

	cfg := GetConfig()
	analyzer, err := pipeline.NewBuilder().WithConfig(cfg.ToAnalyzerConfig()).Build()
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}
	defer func() {
		if err := analyzer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing analyzer: %v\n", err)
		}
	}()

	pages, _ := cmd.Flags().GetString("pages")
	userPassword, _ := cmd.Flags().GetString("password")
	ownerPassword, _ := cmd.Flags().GetString("owner-password")
	var creds *pdf.Credentials
	if userPassword != "" || ownerPassword != "" {
		creds = &pdf.Credentials{UserPassword: userPassword, OwnerPassword: ownerPassword}
	}

	processor := pdf.NewProcessor(analyzer)
	results := make([]*pdf.DocumentResult, 0, len(args))
	for _, file := range args {
		doc, err := processor.ProcessFileWithCredentials(cmd.Context(), file, pages, creds)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", file, err)
		}
		results = append(results, doc)
	}

	format, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output")
	return outputPDFResults(cmd, results, format, outputFile)
}

// outputPDFResults formats the document results and writes them to the
// output file or stdout.
func outputPDFResults(cmd *cobra.Command, results []*pdf.DocumentResult, format, outputFile string) error {
	var out string
	if format == outputFormatJSON {
		b, err := json.MarshalIndent(struct {
			Documents []*pdf.DocumentResult `json:"documents"`
		}{Documents: results}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		out = string(b) + "\n"
	} else {
		out = formatPDFText(results)
	}

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

// formatPDFText renders document results as plain text.
func formatPDFText(results []*pdf.DocumentResult) string {
	var sb strings.Builder
	for i, doc := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# %s: %d page(s) with images, %d frame(s), %d document(s) found\n",
			doc.Filename, doc.PageCount, doc.FrameCount(), doc.Detected)
		for _, page := range doc.Pages {
			for _, fr := range page.Results {
				s, err := pipeline.ToText(fr)
				if err != nil {
					continue
				}
				fmt.Fprintf(&sb, "page %d: %s", page.PageNum, s)
			}
		}
	}
	return sb.String()
}

// GetPDFCommand returns the pdf command for testing purposes.
func GetPDFCommand() *cobra.Command {
	return pdfCmd
}

func init() {
	rootCmd.AddCommand(pdfCmd)

	pdfCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	pdfCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	pdfCmd.Flags().String("pages", "", "page selection, e.g. 1-5 or 1,3,7 (default: all pages)")
	pdfCmd.Flags().StringP("password", "p", "", "user password for encrypted PDFs")
	pdfCmd.Flags().String("owner-password", "", "owner password for encrypted PDFs")
}
