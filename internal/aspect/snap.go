package aspect

import "math"

// snap matches a measured ratio against the canonical format table. It
// returns the snapped ratio, the format name and a Gaussian confidence
// factor; ok is false when no format lies within the snap tolerance.
//
// When two formats both fall within tolerance and their distances differ
// by less than the tie band, the measurement alone cannot separate them.
// With intrinsics and a homography available the tie is broken by the
// decomposition consistency of each candidate instead of raw distance.
func (e *Estimator) snap(ratio, vh float64, hom [9]float64, homOK bool, intr *Intrinsics) (float64, string, float64, bool) {
	best, second := -1, -1
	for i := range e.cfg.Formats {
		d := math.Abs(ratio - e.cfg.Formats[i].Ratio)
		switch {
		case best < 0 || d < math.Abs(ratio-e.cfg.Formats[best].Ratio):
			second = best
			best = i
		case second < 0 || d < math.Abs(ratio-e.cfg.Formats[second].Ratio):
			second = i
		}
	}
	if best < 0 {
		return 0, "", 0, false
	}
	dBest := math.Abs(ratio - e.cfg.Formats[best].Ratio)
	if dBest > e.cfg.SnapTol {
		return 0, "", 0, false
	}

	chosen := best
	if second >= 0 && intr != nil && homOK {
		dSecond := math.Abs(ratio - e.cfg.Formats[second].Ratio)
		if dSecond <= e.cfg.SnapTol && dSecond-dBest < e.cfg.SnapTieBand {
			eb, okB := consistencyError(hom, intr, vh, e.cfg.Formats[best].Ratio)
			es, okS := consistencyError(hom, intr, vh, e.cfg.Formats[second].Ratio)
			if okB && okS && es < eb {
				chosen = second
			}
		}
	}

	f := e.cfg.Formats[chosen]
	d := math.Abs(ratio - f.Ratio)
	factor := math.Exp(-d * d / (2 * e.cfg.SnapSigma * e.cfg.SnapSigma))
	return f.Ratio, f.Name, factor, true
}

// consistencyError measures how badly the homography decomposition fits a
// candidate ratio. The unit-square homography is rescaled to a rectangle
// of the candidate's proportions; for the true ratio the two rotation
// columns come out equal in norm and orthogonal, so the residual combines
// the norm mismatch and the normalized dot product.
func consistencyError(hom [9]float64, intr *Intrinsics, vh, rho float64) (float64, bool) {
	if rho <= 0 {
		return 0, false
	}
	c1, c2, ok := decompose(hom, intr)
	if !ok {
		return 0, false
	}
	// Height per unit width under the candidate: the unfolded vh ratio
	// decides which side the candidate's short side maps to.
	t := rho
	if vh > 1 {
		t = 1 / rho
	}
	n1 := vecNorm(c1)
	n2 := vecNorm(c2) / t
	mean := (n1 + n2) / 2
	if mean < 1e-12 {
		return 0, false
	}
	normErr := math.Abs(n1-n2) / mean
	orthoErr := math.Abs(vecDot(c1, c2)) / (vecNorm(c1) * vecNorm(c2))
	return normErr + orthoErr, true
}
