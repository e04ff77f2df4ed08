package aspect

import (
	"fmt"
	"sort"

	"github.com/docshot/docshot/internal/utils"
)

// Accumulator collects per-frame homographies across a capture
// stabilization window for multi-frame estimation. It is owned by a
// single caller and is not safe for concurrent mutation.
type Accumulator struct {
	homs   [][9]float64
	quads  []utils.Quad
	closed bool
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add computes and stores the unit-square homography for one detected
// quadrilateral. Degenerate quadrilaterals are rejected.
func (a *Accumulator) Add(q utils.Quad) error {
	if a.closed {
		return fmt.Errorf("accumulator is closed")
	}
	ordered := OrderCorners(q)
	if ordered.IsDegenerate() {
		return fmt.Errorf("degenerate quadrilateral %v", q)
	}
	hom, ok := homographyUnitSquare(ordered)
	if !ok {
		return fmt.Errorf("homography solve failed for %v", q)
	}
	a.homs = append(a.homs, hom)
	a.quads = append(a.quads, ordered)
	return nil
}

// FrameCount reports the number of accumulated frames.
func (a *Accumulator) FrameCount() int {
	return len(a.homs)
}

// Reset clears accumulated frames while keeping the backing storage for
// reuse across capture windows.
func (a *Accumulator) Reset() {
	a.homs = a.homs[:0]
	a.quads = a.quads[:0]
}

// Close releases the backing storage. Further Add calls fail.
func (a *Accumulator) Close() {
	a.homs = nil
	a.quads = nil
	a.closed = true
}

// EstimateMulti estimates the true aspect ratio from an accumulated
// stabilization window. With intrinsics it decomposes each stored
// homography directly; without, it first self-calibrates from the window.
// The median across frames makes the result robust to outlier frames, and
// confidence follows the inverse spread.
func (e *Estimator) EstimateMulti(acc *Accumulator, intr *Intrinsics) (MultiFrameEstimate, bool) {
	if acc == nil || acc.FrameCount() < e.cfg.MinFrames {
		return MultiFrameEstimate{}, false
	}
	if intr == nil {
		cal, ok := selfCalibrate(acc.homs)
		if !ok {
			return MultiFrameEstimate{}, false
		}
		intr = &cal
	}

	ratios := make([]float64, 0, len(acc.homs))
	for _, hom := range acc.homs {
		if r, ok := projectiveRatio(hom, intr); ok {
			ratios = append(ratios, r)
		}
	}
	if len(ratios) < e.cfg.MinFrames {
		return MultiFrameEstimate{}, false
	}

	sort.Float64s(ratios)
	med := median(ratios)
	var variance float64
	for _, r := range ratios {
		d := r - med
		variance += d * d
	}
	variance /= float64(len(ratios))

	return MultiFrameEstimate{
		Ratio:      med,
		Confidence: 1 / (1 + e.cfg.VarScale*variance),
		FrameCount: len(ratios),
	}, true
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
