// Package lines detects faint straight boundaries directly from the
// gradient-orientation field, bypassing binary edge thresholding. Aligned
// pixels are region-grown into segments, segments are merged into
// per-orientation clusters, and each cluster yields a homogeneous line
// usable for rectangle solving. Boundaries with per-pixel gradients far
// below any usable global threshold remain detectable this way.
package lines

import (
	"fmt"
	"math"

	"github.com/docshot/docshot/internal/utils"
)

// Orientation labels a segment or cluster as predominantly horizontal or
// vertical. The boundary runs at 45°/135°.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// Segment is one detected straight run of aligned gradient pixels.
type Segment struct {
	P1, P2 utils.Point // endpoints, working-resolution pixel coordinates
	Angle  float64     // direction in degrees, [0, 180)
	Length float64
	Mag    float64 // mean gradient magnitude over the support region
}

// Midpoint returns the segment center.
func (s Segment) Midpoint() utils.Point {
	return utils.Point{X: (s.P1.X + s.P2.X) / 2, Y: (s.P1.Y + s.P2.Y) / 2}
}

// Orientation classifies the segment by its direction angle.
func (s Segment) Orientation() Orientation {
	if s.Angle < 45 || s.Angle >= 135 {
		return Horizontal
	}
	return Vertical
}

// Config holds the extraction and clustering parameters.
type Config struct {
	MagFloor      float64 // minimum gradient magnitude for a pixel to participate
	GrowAngleTol  float64 // region growing: orientation tolerance, degrees
	MinLenFrac    float64 // segment floor, fraction of the longer dimension
	AngleTol      float64 // clustering: max angle difference, degrees
	OffsetTol     float64 // clustering: max perpendicular-offset difference, px
	MinClusterLen float64 // cluster floor, fraction of the image diagonal
	MaxClusters   int     // clusters kept per orientation, longest first
}

// DefaultConfig returns the tuning used by the cascade's fallback path.
func DefaultConfig() Config {
	return Config{
		MagFloor:      2.6,
		GrowAngleTol:  22.5,
		MinLenFrac:    0.05,
		AngleTol:      8,
		OffsetTol:     15,
		MinClusterLen: 0.20,
		MaxClusters:   6,
	}
}

// Validate checks the configuration for contract violations.
func (c Config) Validate() error {
	if c.MagFloor <= 0 {
		return fmt.Errorf("magnitude floor must be positive, got %f", c.MagFloor)
	}
	if c.GrowAngleTol <= 0 || c.GrowAngleTol > 45 {
		return fmt.Errorf("growth angle tolerance must be in (0,45], got %f", c.GrowAngleTol)
	}
	if c.MinLenFrac <= 0 || c.MinLenFrac >= 1 {
		return fmt.Errorf("min length fraction must be in (0,1), got %f", c.MinLenFrac)
	}
	if c.AngleTol <= 0 || c.AngleTol > 45 {
		return fmt.Errorf("cluster angle tolerance must be in (0,45], got %f", c.AngleTol)
	}
	if c.OffsetTol <= 0 {
		return fmt.Errorf("cluster offset tolerance must be positive, got %f", c.OffsetTol)
	}
	if c.MinClusterLen <= 0 || c.MinClusterLen >= 1 {
		return fmt.Errorf("min cluster length must be in (0,1), got %f", c.MinClusterLen)
	}
	if c.MaxClusters <= 0 {
		return fmt.Errorf("max clusters must be positive, got %d", c.MaxClusters)
	}
	return nil
}

// Line is a homogeneous line A·x + B·y + C = 0 in working-resolution
// image coordinates, with (A, B) unit length.
type Line struct {
	A, B, C float64
}

// Intersect returns the intersection of two lines, or ok=false for
// (near-)parallel pairs.
func (l Line) Intersect(m Line) (utils.Point, bool) {
	det := l.A*m.B - m.A*l.B
	if math.Abs(det) < 1e-9 {
		return utils.Point{}, false
	}
	return utils.Point{
		X: (l.B*m.C - m.B*l.C) / det,
		Y: (m.A*l.C - l.A*m.C) / det,
	}, true
}

// angleDiff returns the distance between two direction angles modulo
// 180°, in [0, 90].
func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 180)
	if d > 90 {
		d = 180 - d
	}
	return d
}
