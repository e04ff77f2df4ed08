package rectsolver

import (
	"math"
	"sort"

	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/utils"
)

// solveScan is the last-resort tier: no usable line evidence, so sweep
// tilt hypotheses around axis-aligned and look for accumulation peaks in
// the central band of each dimension. Documents rarely hug the frame
// border, which keeps the band (and the cost) restricted.
func (s *Solver) solveScan(gx, gy []float32, w, h int) (Solution, bool) {
	var best Solution
	found := false
	for tilt := -s.cfg.TiltRange; tilt <= s.cfg.TiltRange+1e-9; tilt += s.cfg.TiltStep {
		hPeaks := s.scanPeaks(gx, gy, w, h, lines.Horizontal, tilt)
		if len(hPeaks) < 2 {
			continue
		}
		vPeaks := s.scanPeaks(gx, gy, w, h, lines.Vertical, tilt)
		if len(vPeaks) < 2 {
			continue
		}
		for i := 0; i < len(hPeaks)-1; i++ {
			for j := i + 1; j < len(hPeaks); j++ {
				for k := 0; k < len(vPeaks)-1; k++ {
					for l := k + 1; l < len(vPeaks); l++ {
						sol, ok := s.scoreScanQuad(hPeaks[i], hPeaks[j], vPeaks[k], vPeaks[l], gx, gy, w, h)
						if !ok {
							continue
						}
						if !found || sol.Confidence > best.Confidence {
							best = sol
							found = true
						}
					}
				}
			}
		}
	}
	return best, found
}

func (s *Solver) scoreScanQuad(h1, h2, v1, v2 hypothesis, gx, gy []float32, w, h int) (Solution, bool) {
	q, ok := quadFromLines(h1.line(w, h), h2.line(w, h), v1.line(w, h), v2.line(w, h))
	if !ok || !s.admit(q, w, h) {
		return Solution{}, false
	}
	count, quality := s.sideSupport(gx, gy, w, h, q)
	if count < s.cfg.MinSides {
		return Solution{}, false
	}
	score := s.quadScore(q, w, h, quality) + s.bonuses(q, w, h)
	if score > 1 {
		score = 1
	}
	conf := s.cfg.Tier3Base + s.cfg.Tier3Span*score
	return Solution{Corners: q, Confidence: conf, Tier: 3, Searched: 4}, true
}

// scanPeaks profiles the accumulation response across the central band at
// the coarse step and returns up to MaxPeaks refined local maxima, spaced
// at least two coarse steps apart.
func (s *Solver) scanPeaks(gx, gy []float32, w, h int, o lines.Orientation, tilt float64) []hypothesis {
	dim, extent := h, w
	if o == lines.Vertical {
		dim, extent = w, h
	}
	lo := int(s.cfg.BandLow * float64(dim))
	hi := int(s.cfg.BandHigh * float64(dim))
	extLo := int(s.cfg.BandLow * float64(extent))
	extHi := int(s.cfg.BandHigh * float64(extent))
	step := s.cfg.CoarseStep

	type sample struct {
		pos  int
		resp float64
	}
	var profile []sample
	for p := lo; p < hi; p += step {
		r := response(gx, gy, w, h, hypothesis{o: o, pos: float64(p), tilt: tilt}, extLo, extHi)
		profile = append(profile, sample{pos: p, resp: r})
	}

	var peaks []sample
	for i, sm := range profile {
		if sm.resp < s.cfg.GradientFloor {
			continue
		}
		if i > 0 && profile[i-1].resp > sm.resp {
			continue
		}
		if i < len(profile)-1 && profile[i+1].resp > sm.resp {
			continue
		}
		peaks = append(peaks, sm)
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].resp > peaks[j].resp })

	minGap := float64(2 * step)
	var out []hypothesis
	for _, pk := range peaks {
		if len(out) == s.cfg.MaxPeaks {
			break
		}
		clash := false
		for _, kept := range out {
			if math.Abs(kept.pos-float64(pk.pos)) < minGap {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		out = append(out, s.refinePeak(gx, gy, w, h, o, tilt, pk.pos, extLo, extHi, lo, hi))
	}
	return out
}

// refinePeak re-evaluates the coarse winner at single-pixel resolution.
func (s *Solver) refinePeak(gx, gy []float32, w, h int, o lines.Orientation, tilt float64, pos, extLo, extHi, lo, hi int) hypothesis {
	best := hypothesis{o: o, pos: float64(pos), tilt: tilt}
	bestResp := response(gx, gy, w, h, best, extLo, extHi)
	for p := pos - s.cfg.FineRadius; p <= pos+s.cfg.FineRadius; p++ {
		if p < lo || p >= hi || p == pos {
			continue
		}
		hy := hypothesis{o: o, pos: float64(p), tilt: tilt}
		if r := response(gx, gy, w, h, hy, extLo, extHi); r > bestResp {
			best, bestResp = hy, r
		}
	}
	return best
}

// bonuses rewards scan candidates centered in the frame and with common
// document proportions.
func (s *Solver) bonuses(q utils.Quad, w, h int) float64 {
	var bonus float64
	c := q.Centroid()
	dx := math.Abs(c.X-float64(w)/2) / float64(w)
	dy := math.Abs(c.Y-float64(h)/2) / float64(h)
	if dx < 0.10 && dy < 0.10 {
		bonus += s.cfg.CenterBonus
	}
	sides := q.Sides()
	horizontal := (sides[0] + sides[2]) / 2
	vertical := (sides[1] + sides[3]) / 2
	long, short := math.Max(horizontal, vertical), math.Min(horizontal, vertical)
	if long > 0 && short/long >= 0.5 {
		bonus += s.cfg.AspectBonus
	}
	return bonus
}
