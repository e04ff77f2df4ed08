// Package aspect estimates the true aspect ratio of a detected document
// from its perspective-distorted corners. Mild distortion gets a
// convergence-angle correction, strong distortion a projective
// decomposition against known camera intrinsics, and capture sessions can
// accumulate homographies across frames for a median estimate with
// optional self-calibration.
package aspect

import (
	"fmt"
	"strconv"

	"github.com/docshot/docshot/internal/utils"
)

// Method identifies which correction produced a single-frame estimate.
type Method int

const (
	MethodAngular Method = iota
	MethodProjective
	MethodBlended
)

func (m Method) String() string {
	switch m {
	case MethodAngular:
		return "angular"
	case MethodProjective:
		return "projective"
	case MethodBlended:
		return "blended"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the method as its name.
func (m Method) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON decodes a method from its name, so serialized results
// round-trip through clients.
func (m *Method) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	switch s {
	case "angular":
		*m = MethodAngular
	case "projective":
		*m = MethodProjective
	case "blended":
		*m = MethodBlended
	default:
		return fmt.Errorf("unknown aspect method %q", s)
	}
	return nil
}

// Intrinsics are the camera parameters used by the projective paths.
// Optional input, never mutated.
type Intrinsics struct {
	Fx float64 `json:"fx"`
	Fy float64 `json:"fy"`
	Cx float64 `json:"cx"`
	Cy float64 `json:"cy"`
}

// Estimate is a single-frame aspect ratio result. Ratio is always the
// short side over the long side, in (0, 1].
type Estimate struct {
	Ratio                float64 `json:"ratio"`
	Confidence           float64 `json:"confidence"`
	Method               Method  `json:"method"`
	Severity             float64 `json:"severity_deg"`
	SnappedTo            string  `json:"snapped_to,omitempty"`
	VerifiedByHomography bool    `json:"verified_by_homography"`
}

// MultiFrameEstimate is the accumulated result over a capture window.
type MultiFrameEstimate struct {
	Ratio      float64 `json:"ratio"`
	Confidence float64 `json:"confidence"`
	FrameCount int     `json:"frame_count"`
}

// Format is a canonical document format the estimator can snap to.
type Format struct {
	Name  string
	Ratio float64
}

// Formats returns the canonical document formats, as short/long ratios.
func Formats() []Format {
	return []Format{
		{Name: "a4", Ratio: 0.707},
		{Name: "letter", Ratio: 0.773},
		{Name: "id-card", Ratio: 0.631},
		{Name: "business-card", Ratio: 0.571},
		{Name: "receipt", Ratio: 0.333},
		{Name: "square", Ratio: 1.0},
	}
}

// Estimator runs the single-frame and multi-frame estimation paths.
type Estimator struct {
	cfg Config
}

// New returns an estimator for the given configuration.
func New(cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("aspect config: %w", err)
	}
	return &Estimator{cfg: cfg}, nil
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Estimate computes the corrected aspect ratio of one detected quad.
// Intrinsics may be nil; the projective path then falls back to the
// angular correction regardless of severity.
func (e *Estimator) Estimate(q utils.Quad, intr *Intrinsics) (Estimate, error) {
	q = OrderCorners(q)
	if q.IsDegenerate() {
		return Estimate{}, fmt.Errorf("degenerate quadrilateral %v", q)
	}
	vh, ok := sideRatioVH(q)
	if !ok {
		return Estimate{}, fmt.Errorf("degenerate quadrilateral %v", q)
	}

	sev := Severity(q)
	angular := angularRatio(q, vh)
	ratio := angular
	method := MethodAngular
	verified := false

	hom, homOK := homographyUnitSquare(q)
	if intr != nil && homOK && sev > e.cfg.SeverityLow {
		if pr, prOK := projectiveRatio(hom, intr); prOK {
			if sev >= e.cfg.SeverityHigh {
				ratio, method, verified = pr, MethodProjective, true
			} else {
				t := (sev - e.cfg.SeverityLow) / (e.cfg.SeverityHigh - e.cfg.SeverityLow)
				ratio = (1-t)*angular + t*pr
				method, verified = MethodBlended, true
			}
		}
	}

	est := Estimate{
		Ratio:                ratio,
		Method:               method,
		Severity:             sev,
		VerifiedByHomography: verified,
	}
	base := 1 - sev/90
	if base < 0.5 {
		base = 0.5
	}
	if snapped, name, factor, ok := e.snap(ratio, vh, hom, homOK, intr); ok {
		est.Ratio = snapped
		est.SnappedTo = name
		est.Confidence = base * factor
	} else {
		est.Confidence = base * e.cfg.UnsnappedFactor
	}
	return est, nil
}
