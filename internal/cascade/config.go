package cascade

import (
	"fmt"
	"time"
)

// Config holds the cascade control parameters.
type Config struct {
	ShortCircuit float64       // confidence at which remaining strategies are skipped
	Budget       time.Duration // soft wall-clock budget across strategies
	MinAccept    float64       // lowest confidence reported as a found document
}

// DefaultConfig returns the cascade defaults.
func DefaultConfig() Config {
	return Config{
		ShortCircuit: 0.65,
		Budget:       25 * time.Millisecond,
		MinAccept:    0.35,
	}
}

// Validate checks the configuration for contract violations.
func (c Config) Validate() error {
	if c.ShortCircuit <= 0 || c.ShortCircuit > 1 {
		return fmt.Errorf("short-circuit confidence must be in (0,1], got %f", c.ShortCircuit)
	}
	if c.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %s", c.Budget)
	}
	if c.MinAccept < 0 || c.MinAccept > c.ShortCircuit {
		return fmt.Errorf("min accept %f must be in [0, short-circuit %f]", c.MinAccept, c.ShortCircuit)
	}
	return nil
}
