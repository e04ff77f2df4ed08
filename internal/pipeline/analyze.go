package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/scene"
	"github.com/docshot/docshot/internal/utils"
)

// Corner is one document corner in original image coordinates.
type Corner struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DetectionResult is the serialized face of a detection, with corners
// mapped back to the original resolution in TL, TR, BR, BL order.
type DetectionResult struct {
	Found       bool     `json:"found"`
	Corners     []Corner `json:"corners,omitempty"`
	Confidence  float64  `json:"confidence"`
	EdgeDensity float64  `json:"edge_density,omitempty"`
	Candidates  int      `json:"candidates,omitempty"`
}

// StageTiming reports one cascade stage and its wall time.
type StageTiming struct {
	Name      string  `json:"name"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// FrameResult is the full analysis of one frame.
type FrameResult struct {
	Width       int                        `json:"width"`
	Height      int                        `json:"height"`
	Scene       string                     `json:"scene"`
	Strategy    string                     `json:"strategy,omitempty"`
	Detection   DetectionResult            `json:"detection"`
	Estimate    *aspect.Estimate           `json:"estimate,omitempty"`
	Accumulated *aspect.MultiFrameEstimate `json:"accumulated,omitempty"`
	Partial     bool                       `json:"partial"`
	ElapsedMs   float64                    `json:"elapsed_ms"`
	Stages      []StageTiming              `json:"stages,omitempty"`

	quad utils.Quad
}

// Quad returns the detected corners in original coordinates. ok is false
// when the frame had no accepted detection.
func (fr *FrameResult) Quad() (utils.Quad, bool) {
	return fr.quad, fr.Detection.Found
}

// AnalyzeFrame runs scene classification, the detection cascade and the
// single-frame aspect estimate on one image. An empty scene is a valid
// result with Found false, not an error.
func (a *Analyzer) AnalyzeFrame(ctx context.Context, img image.Image) (*FrameResult, error) {
	if a == nil || a.closed {
		return nil, errors.New("analyzer is closed")
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	bounds := img.Bounds()
	a.noteResolution(bounds.Dx(), bounds.Dy())

	gray, sc := edges.Prepare(img, a.cfg.Edges.WorkingWidth)
	analysis, cached := a.cache.Get()
	if !cached {
		analysis = scene.Analyze(gray)
		a.cache.Put(analysis)
	}

	res := a.runner.Run(ctx, gray, analysis)

	fr := &FrameResult{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Scene:   analysis.Kind.String(),
		Partial: res.Partial,
	}
	for _, st := range res.Timings {
		fr.Stages = append(fr.Stages, StageTiming{Name: st.Name, ElapsedMs: ms(st.Elapsed)})
	}

	if res.Detection.Found {
		quad := sc.QuadToOriginal(res.Detection.Quad.Corners)
		fr.quad = quad
		fr.Strategy = res.Strategy.String()
		fr.Detection = DetectionResult{
			Found:       true,
			Corners:     quadCorners(quad),
			Confidence:  res.Detection.Confidence,
			EdgeDensity: res.Detection.EdgeDensity,
			Candidates:  res.Detection.Candidates,
		}
		if est, err := a.est.Estimate(quad, a.cfg.Intrinsics); err == nil {
			fr.Estimate = &est
		}
	}
	fr.ElapsedMs = ms(time.Since(start))

	slog.Debug("frame analyzed",
		"scene", fr.Scene,
		"found", fr.Detection.Found,
		"strategy", fr.Strategy,
		"elapsed_ms", fr.ElapsedMs)
	return fr, nil
}

// AnalyzeSequence runs every frame through AnalyzeFrame while feeding
// the multi-frame accumulator, then closes with an accumulated estimate
// once enough detections contributed. Frames without an accepted
// detection still produce a FrameResult; they just do not contribute.
func (a *Analyzer) AnalyzeSequence(ctx context.Context, imgs []image.Image) ([]*FrameResult, *aspect.MultiFrameEstimate, error) {
	if len(imgs) == 0 {
		return nil, nil, errors.New("no frames provided")
	}
	a.acc.Reset()

	results := make([]*FrameResult, 0, len(imgs))
	for i, img := range imgs {
		fr, err := a.AnalyzeFrame(ctx, img)
		if err != nil {
			return results, nil, fmt.Errorf("frame %d: %w", i, err)
		}
		results = append(results, fr)
		if fr.Detection.Found {
			if err := a.acc.Add(fr.quad); err != nil {
				slog.Debug("frame excluded from accumulation", "frame", i, "error", err)
			}
		}
	}

	if multi, ok := a.est.EstimateMulti(a.acc, a.cfg.Intrinsics); ok {
		return results, &multi, nil
	}
	return results, nil, nil
}

func quadCorners(q utils.Quad) []Corner {
	out := make([]Corner, 4)
	for i, p := range q {
		out[i] = Corner{X: p.X, Y: p.Y}
	}
	return out
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1e3
}
