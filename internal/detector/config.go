package detector

import (
	"fmt"

	"github.com/docshot/docshot/internal/aspect"
)

// Config holds the candidate extraction and ranking parameters.
type Config struct {
	MinAreaFrac     float64 // contours below this fraction of image area are discarded
	PartialAreaFrac float64 // partial-document evidence needs at least this fraction
	EpsilonFrac     float64 // polygon approximation epsilon, fraction of perimeter
	EdgeTouchTol    float64 // frame-edge proximity for the partial test, px

	AreaWeight   float64 // quad score: area ratio component
	AngleWeight  float64 // quad score: angle regularity component
	AspectWeight float64 // quad score: canonical ratio component
	AreaClamp    float64 // area ratio treated as full score from here up
	AspectSigma  float64 // Gaussian width of the canonical ratio similarity

	SamplesPerSide int // edge density: sample points per quad side
	SearchRadius   int // edge density: support search radius, px

	DensityBlend   float64 // confidence: edge density share (quad score gets the rest)
	MarginFull     float64 // margin at which the ambiguity penalty vanishes
	MarginPenalty  float64 // confidence scale at margin 0
	CanonicalTable []aspect.Format
}

// DefaultConfig returns the ranking defaults.
func DefaultConfig() Config {
	return Config{
		MinAreaFrac:     0.02,
		PartialAreaFrac: 0.08,
		EpsilonFrac:     0.03,
		EdgeTouchTol:    2.0,
		AreaWeight:      0.4,
		AngleWeight:     0.4,
		AspectWeight:    0.2,
		AreaClamp:       0.85,
		AspectSigma:     0.10,
		SamplesPerSide:  20,
		SearchRadius:    3,
		DensityBlend:    0.4,
		MarginFull:      0.15,
		MarginPenalty:   0.75,
		CanonicalTable:  aspect.Formats(),
	}
}

// Validate checks the configuration for contract violations.
func (c Config) Validate() error {
	if c.MinAreaFrac <= 0 || c.MinAreaFrac >= 1 {
		return fmt.Errorf("min area fraction must be in (0,1), got %f", c.MinAreaFrac)
	}
	if c.PartialAreaFrac < c.MinAreaFrac {
		return fmt.Errorf("partial area fraction %f must not be below min area fraction %f",
			c.PartialAreaFrac, c.MinAreaFrac)
	}
	if c.EpsilonFrac <= 0 || c.EpsilonFrac >= 1 {
		return fmt.Errorf("epsilon fraction must be in (0,1), got %f", c.EpsilonFrac)
	}
	sum := c.AreaWeight + c.AngleWeight + c.AspectWeight
	if sum <= 0 {
		return fmt.Errorf("score weights must sum to a positive value, got %f", sum)
	}
	if c.AspectSigma <= 0 {
		return fmt.Errorf("aspect sigma must be positive, got %f", c.AspectSigma)
	}
	if c.SamplesPerSide <= 0 {
		return fmt.Errorf("samples per side must be positive, got %d", c.SamplesPerSide)
	}
	if c.SearchRadius < 0 {
		return fmt.Errorf("search radius must be non-negative, got %d", c.SearchRadius)
	}
	if c.DensityBlend < 0 || c.DensityBlend > 1 {
		return fmt.Errorf("density blend must be in [0,1], got %f", c.DensityBlend)
	}
	if len(c.CanonicalTable) == 0 {
		return fmt.Errorf("canonical ratio table must not be empty")
	}
	return nil
}
