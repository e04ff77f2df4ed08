package rectify

import "fmt"

// Config controls the output geometry of the perspective warp.
type Config struct {
	// OutputLong is the length of the warped image's long side in pixels.
	OutputLong int

	// MaxScale caps how far a small detection may be upsampled, as the
	// ratio of the output long side to the document's longest observed
	// side. Zero disables the cap.
	MaxScale float64
}

// DefaultConfig returns the warp defaults used by the scan command.
func DefaultConfig() Config {
	return Config{
		OutputLong: 1024,
		MaxScale:   4.0,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.OutputLong < 32 {
		return fmt.Errorf("output long side %d below minimum 32", c.OutputLong)
	}
	if c.MaxScale < 0 {
		return fmt.Errorf("max scale must not be negative, got %g", c.MaxScale)
	}
	return nil
}
