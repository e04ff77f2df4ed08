package rectsolver

import "fmt"

// Config carries the geometric gates, the accumulation-search parameters,
// and the per-tier confidence ranges of the solver.
type Config struct {
	BorderTol   float64 // fraction of the image diagonal a corner may sit outside the frame
	MinAreaFrac float64 // minimum quad area as a fraction of the image area
	AngleLow    float64 // interior angle floor in degrees
	AngleHigh   float64 // interior angle ceiling in degrees

	SupportWeight float64 // weight of line evidence in the quad score
	AreaWeight    float64 // weight of the area ratio
	AngleWeight   float64 // weight of angle regularity

	CoarseStep    int     // coarse sweep step in pixels
	FineRadius    int     // refinement half-window around a coarse winner in pixels
	GradientFloor float64 // minimum mean perpendicular gradient along an accepted side
	MinSides      int     // sides that must clear GradientFloor on a searched quad
	Separation    float64 // minimum spacing between parallel sides, fraction of the dimension

	SearchLow  float64 // constrained-search band start, fraction of the dimension
	SearchHigh float64 // constrained-search band end
	BandLow    float64 // restricted-scan band start, fraction of the dimension
	BandHigh   float64 // restricted-scan band end
	TiltRange  float64 // restricted-scan tilt half-range in degrees
	TiltStep   float64 // restricted-scan tilt step in degrees
	MaxPeaks   int     // accumulation peaks kept per orientation

	CenterBonus float64 // scan score bonus for near-centered candidates
	AspectBonus float64 // scan score bonus for common document proportions

	Tier1Base float64 // confidence floor of the intersection tier
	Tier1Span float64 // confidence span of the intersection tier
	Tier2Base float64 // confidence floor of the constrained-search tier
	Tier2Span float64 // confidence span of the constrained-search tier
	Tier3Base float64 // confidence floor of the restricted-scan tier
	Tier3Span float64 // confidence span of the restricted-scan tier
}

// DefaultConfig returns the tuning used by the detection pipeline.
func DefaultConfig() Config {
	return Config{
		BorderTol:     0.05,
		MinAreaFrac:   0.10,
		AngleLow:      60,
		AngleHigh:     120,
		SupportWeight: 0.4,
		AreaWeight:    0.3,
		AngleWeight:   0.3,
		CoarseStep:    8,
		FineRadius:    12,
		GradientFloor: 1.2,
		MinSides:      3,
		Separation:    0.10,
		SearchLow:     0.05,
		SearchHigh:    0.95,
		BandLow:       0.15,
		BandHigh:      0.85,
		TiltRange:     8,
		TiltStep:      2,
		MaxPeaks:      4,
		CenterBonus:   0.05,
		AspectBonus:   0.05,
		Tier1Base:     0.50,
		Tier1Span:     0.35,
		Tier2Base:     0.45,
		Tier2Span:     0.30,
		Tier3Base:     0.40,
		Tier3Span:     0.25,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.MinAreaFrac <= 0 || c.MinAreaFrac >= 1 {
		return fmt.Errorf("min area fraction %f outside (0, 1)", c.MinAreaFrac)
	}
	if c.BorderTol < 0 {
		return fmt.Errorf("border tolerance %f is negative", c.BorderTol)
	}
	if c.AngleLow <= 0 || c.AngleHigh <= c.AngleLow || c.AngleHigh >= 180 {
		return fmt.Errorf("interior angle range [%f, %f] is not usable", c.AngleLow, c.AngleHigh)
	}
	if w := c.SupportWeight + c.AreaWeight + c.AngleWeight; w <= 0 {
		return fmt.Errorf("score weights sum to %f, want positive", w)
	}
	if c.CoarseStep <= 0 {
		return fmt.Errorf("coarse step %d must be positive", c.CoarseStep)
	}
	if c.FineRadius < 0 {
		return fmt.Errorf("fine radius %d is negative", c.FineRadius)
	}
	if c.GradientFloor <= 0 {
		return fmt.Errorf("gradient floor %f must be positive", c.GradientFloor)
	}
	if c.MinSides < 1 || c.MinSides > 4 {
		return fmt.Errorf("min supported sides %d outside [1, 4]", c.MinSides)
	}
	if c.SearchLow < 0 || c.SearchHigh <= c.SearchLow || c.SearchHigh > 1 {
		return fmt.Errorf("search band [%f, %f] is not usable", c.SearchLow, c.SearchHigh)
	}
	if c.BandLow < 0 || c.BandHigh <= c.BandLow || c.BandHigh > 1 {
		return fmt.Errorf("scan band [%f, %f] is not usable", c.BandLow, c.BandHigh)
	}
	if c.TiltRange < 0 || c.TiltStep <= 0 {
		return fmt.Errorf("tilt sweep %f/%f is not usable", c.TiltRange, c.TiltStep)
	}
	if c.MaxPeaks <= 0 {
		return fmt.Errorf("max peaks %d must be positive", c.MaxPeaks)
	}
	return nil
}
