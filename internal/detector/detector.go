package detector

import (
	"fmt"

	"github.com/docshot/docshot/internal/edges"
)

// Detection is the outcome of one edge-map pass. Found false is a
// normal no-document result, not an error. Coordinates are at working
// resolution; callers rescale through edges.Scale.
type Detection struct {
	Found       bool
	Quad        RankedQuad
	Confidence  float64
	EdgeDensity float64
	Margin      float64
	Partial     bool
	Candidates  int
}

// Detector turns edge maps into ranked document detections.
type Detector struct {
	cfg Config
}

// New validates the configuration and builds a Detector.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("detector config: %w", err)
	}
	return &Detector{cfg: cfg}, nil
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config { return d.cfg }

// Detect extracts candidates from the edge map, ranks them, verifies
// edge support and blends the final confidence.
func (d *Detector) Detect(m *edges.Map) Detection {
	cands, partial := FindCandidates(m, d.cfg)

	det := Detection{Partial: partial.Present, Candidates: len(cands)}
	imgArea := float64(m.Width) * float64(m.Height)

	best, margin, ok := Rank(cands, imgArea, d.cfg)
	if !ok {
		return det
	}

	density := VerifyEdgeDensity(best.Corners, m, d.cfg)

	det.Found = true
	det.Quad = best
	det.Margin = margin
	det.EdgeDensity = density
	det.Confidence = Confidence(best.Score, density, margin, d.cfg)
	return det
}

// Confidence blends the quad's geometric score with its measured edge
// density, then applies the ambiguity penalty: full confidence needs the
// winner to clear the runner-up by MarginFull.
func Confidence(quadScore, density, margin float64, cfg Config) float64 {
	blend := (1-cfg.DensityBlend)*quadScore + cfg.DensityBlend*density

	frac := 1.0
	if cfg.MarginFull > 0 {
		frac = margin / cfg.MarginFull
		if frac > 1 {
			frac = 1
		}
		if frac < 0 {
			frac = 0
		}
	}
	penalty := cfg.MarginPenalty + (1-cfg.MarginPenalty)*frac

	conf := blend * penalty
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}
