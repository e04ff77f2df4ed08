package batch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/utils"
)

// processImages loads the discovered files and fans them out over the
// analyzer's worker pool. Result slots stay aligned with files; with
// ContinueOnError set, failed slots end up nil instead of aborting the
// whole run.
func processImages(ctx context.Context, analyzer *pipeline.Analyzer, files []string, config *Config) ([]*pipeline.FrameResult, error) {
	loaded := utils.BatchLoadImages(files)

	imgs := make([]image.Image, 0, len(files))
	indices := make([]int, 0, len(files))
	for i, lr := range loaded {
		if lr.Err != nil {
			if !config.ContinueOnError {
				return nil, fmt.Errorf("failed to load %s: %w", lr.Path, lr.Err)
			}
			slog.Warn("skipping unreadable image", "file", lr.Path, "error", lr.Err)
			continue
		}
		imgs = append(imgs, lr.Img)
		indices = append(indices, i)
	}

	results := make([]*pipeline.FrameResult, len(files))
	if len(imgs) == 0 {
		return results, nil
	}

	frames, err := analyzer.AnalyzeBatch(ctx, imgs)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && !config.ContinueOnError {
		return nil, err
	}
	for j, fr := range frames {
		results[indices[j]] = fr
	}

	if config.OverlayDir != "" {
		saveOverlays(loaded, results, config.OverlayDir)
	}

	return results, nil
}

// saveOverlays writes detection overlays for found frames into dir,
// named after the source images. Overlay failures are logged, never
// fatal.
func saveOverlays(loaded []utils.BatchImageResult, results []*pipeline.FrameResult, dir string) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Warn("cannot create overlay directory", "dir", dir, "error", err)
		return
	}

	for i, fr := range results {
		if fr == nil || !fr.Detection.Found {
			continue
		}
		ov := pipeline.RenderOverlay(loaded[i].Img, fr)
		if ov == nil {
			continue
		}
		outPath := filepath.Join(dir, overlayName(loaded[i].Path))
		if err := utils.SaveImage(ov, outPath); err != nil {
			slog.Warn("cannot save overlay", "file", outPath, "error", err)
		}
	}
}

// overlayName derives the overlay file name from a source image path.
func overlayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_overlay.png"
}
