package aspect

import "fmt"

// Config carries the estimator tuning.
type Config struct {
	SnapTol         float64 // max distance to a canonical format for snapping
	SnapSigma       float64 // Gaussian width of the snap confidence factor
	SnapTieBand     float64 // distance spread under which two candidates count as tied
	SeverityLow     float64 // below this only the angular correction runs, degrees
	SeverityHigh    float64 // above this only the projective path runs, degrees
	UnsnappedFactor float64 // confidence factor for ratios matching no format
	MinFrames       int     // frames required for a multi-frame estimate
	VarScale        float64 // inverse-variance confidence scale across frames
	Formats         []Format
}

// DefaultConfig returns the tuning used by the detection pipeline.
func DefaultConfig() Config {
	return Config{
		SnapTol:         0.06,
		SnapSigma:       0.04,
		SnapTieBand:     0.02,
		SeverityLow:     15,
		SeverityHigh:    20,
		UnsnappedFactor: 0.7,
		MinFrames:       3,
		VarScale:        1000,
		Formats:         Formats(),
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.SnapTol <= 0 || c.SnapTol >= 0.5 {
		return fmt.Errorf("snap tolerance %f outside (0, 0.5)", c.SnapTol)
	}
	if c.SnapSigma <= 0 {
		return fmt.Errorf("snap sigma %f must be positive", c.SnapSigma)
	}
	if c.SnapTieBand < 0 {
		return fmt.Errorf("snap tie band %f is negative", c.SnapTieBand)
	}
	if c.SeverityLow <= 0 || c.SeverityHigh <= c.SeverityLow {
		return fmt.Errorf("severity band [%f, %f] is not usable", c.SeverityLow, c.SeverityHigh)
	}
	if c.UnsnappedFactor <= 0 || c.UnsnappedFactor > 1 {
		return fmt.Errorf("unsnapped factor %f outside (0, 1]", c.UnsnappedFactor)
	}
	if c.MinFrames < 3 {
		return fmt.Errorf("min frames %d must be at least 3", c.MinFrames)
	}
	if c.VarScale <= 0 {
		return fmt.Errorf("variance scale %f must be positive", c.VarScale)
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("no canonical formats configured")
	}
	for _, f := range c.Formats {
		if f.Ratio <= 0 || f.Ratio > 1 {
			return fmt.Errorf("format %q ratio %f outside (0, 1]", f.Name, f.Ratio)
		}
	}
	return nil
}
