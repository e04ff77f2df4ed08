package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docshot/docshot/internal/pipeline"
)

// Processor runs document detection over the photographed pages of PDF
// files.
type Processor struct {
	analyzer *pipeline.Analyzer
}

// NewProcessor creates a processor around an analyzer. The processor
// does not own the analyzer; the caller closes it.
func NewProcessor(analyzer *pipeline.Analyzer) *Processor {
	return &Processor{analyzer: analyzer}
}

// ProcessFile extracts the images of a PDF and runs detection on each.
// An empty pageRange selects all pages.
func (p *Processor) ProcessFile(ctx context.Context, filename, pageRange string) (*DocumentResult, error) {
	return p.ProcessFileWithCredentials(ctx, filename, pageRange, nil)
}

// ProcessFileWithCredentials is ProcessFile for password-protected
// files. A nil creds fails on protected input instead of prompting.
func (p *Processor) ProcessFileWithCredentials(ctx context.Context, filename, pageRange string,
	creds *Credentials,
) (*DocumentResult, error) {
	source, cleanup, err := resolveEncrypted(filename, creds)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	extractStart := time.Now()
	pages, err := ExtractImages(source, pageRange)
	if err != nil {
		return nil, err
	}
	extractMs := float64(time.Since(extractStart).Microseconds()) / 1000

	result := &DocumentResult{
		Filename:  filename,
		PageCount: len(pages),
		ExtractMs: extractMs,
	}

	analyzeStart := time.Now()
	for _, pageNum := range SortedPages(pages) {
		page := PageResult{PageNum: pageNum}
		for i, img := range pages[pageNum] {
			fr, err := p.analyzer.AnalyzeFrame(ctx, img)
			if err != nil {
				return nil, fmt.Errorf("page %d image %d: %w", pageNum, i, err)
			}
			if fr.Detection.Found {
				result.Detected++
			}
			page.Results = append(page.Results, fr)
		}
		result.Pages = append(result.Pages, page)
	}
	result.AnalyzeMs = float64(time.Since(analyzeStart).Microseconds()) / 1000

	slog.Debug("pdf processed",
		"file", filename,
		"pages", result.PageCount,
		"frames", result.FrameCount(),
		"detected", result.Detected)

	return result, nil
}
