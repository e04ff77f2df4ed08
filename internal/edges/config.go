package edges

import "fmt"

// KernelMode selects the directional-gradient kernel implementation.
type KernelMode int

const (
	// KernelAuto uses the accelerated kernel when available.
	KernelAuto KernelMode = iota
	// KernelReference forces the straightforward implementation.
	KernelReference
	// KernelAccelerated forces the flat-slice implementation.
	KernelAccelerated
)

// String returns the kernel mode name used in config files.
func (k KernelMode) String() string {
	switch k {
	case KernelAuto:
		return "auto"
	case KernelReference:
		return "reference"
	case KernelAccelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

// Hysteresis threshold clamps. Low and high are derived from the mean
// frame intensity and clamped into these bands, keeping at least minGap
// between them.
const (
	lowClampMin  = 10.0
	lowClampMax  = 200.0
	highClampMin = 30.0
	highClampMax = 250.0
	minGap       = 10.0
)

// Config holds the edge pipeline parameters.
type Config struct {
	WorkingWidth int     // downscale target width; images are never upscaled
	BlurSigma    float64 // Gaussian blur applied before gradients
	LowMult      float64 // low threshold = LowMult × mean intensity
	HighMult     float64 // high threshold = HighMult × mean intensity
	MinSpanFrac  float64 // suppression: min line span, fraction of longer dimension
	BorderPx     int     // suppression: max endpoint distance from a border
	StrokePx     int     // suppression: erase stroke thickness
	Kernel       KernelMode
}

// DefaultConfig returns the edge pipeline defaults.
func DefaultConfig() Config {
	return Config{
		WorkingWidth: 640,
		BlurSigma:    1.4,
		LowMult:      0.67,
		HighMult:     1.33,
		MinSpanFrac:  0.70,
		BorderPx:     15,
		StrokePx:     3,
		Kernel:       KernelAuto,
	}
}

// Validate checks the configuration for contract violations.
func (c Config) Validate() error {
	if c.WorkingWidth <= 0 {
		return fmt.Errorf("working width must be positive, got %d", c.WorkingWidth)
	}
	if c.BlurSigma < 0 {
		return fmt.Errorf("blur sigma must be non-negative, got %f", c.BlurSigma)
	}
	if c.LowMult <= 0 || c.HighMult <= 0 {
		return fmt.Errorf("threshold multipliers must be positive, got low=%f high=%f", c.LowMult, c.HighMult)
	}
	if c.LowMult >= c.HighMult {
		return fmt.Errorf("low multiplier %f must be below high multiplier %f", c.LowMult, c.HighMult)
	}
	if c.MinSpanFrac <= 0 || c.MinSpanFrac > 1 {
		return fmt.Errorf("min span fraction must be in (0,1], got %f", c.MinSpanFrac)
	}
	if c.BorderPx < 0 {
		return fmt.Errorf("border distance must be non-negative, got %d", c.BorderPx)
	}
	if c.StrokePx <= 0 {
		return fmt.Errorf("stroke thickness must be positive, got %d", c.StrokePx)
	}
	switch c.Kernel {
	case KernelAuto, KernelReference, KernelAccelerated:
	default:
		return fmt.Errorf("unknown kernel mode %d", int(c.Kernel))
	}
	return nil
}
