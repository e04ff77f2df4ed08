// Package scene classifies the lighting and contrast regime of a frame and
// orders the preprocessing strategies the detection cascade should try.
package scene

import (
	"image"
	"math"
)

// Kind classifies the lighting/contrast regime of a frame.
type Kind int

const (
	KindNormal Kind = iota
	KindLowLight
	KindLowContrast
	KindLowDifferentiation
)

// String returns the regime name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindLowLight:
		return "low_light"
	case KindLowContrast:
		return "low_contrast"
	case KindLowDifferentiation:
		return "low_differentiation"
	default:
		return "unknown"
	}
}

// Strategy identifies one preprocessing strategy of the detection cascade.
// The set is closed; the cascade dispatches over it exhaustively.
type Strategy int

const (
	StrategyContour Strategy = iota
	StrategyContrast
	StrategyDoG
	StrategyDirectional
	StrategyLineCluster
)

// String returns the strategy name used in logs, metrics and results.
func (s Strategy) String() string {
	switch s {
	case StrategyContour:
		return "contour"
	case StrategyContrast:
		return "contrast"
	case StrategyDoG:
		return "dog"
	case StrategyDirectional:
		return "directional"
	case StrategyLineCluster:
		return "line_cluster"
	default:
		return "unknown"
	}
}

// Stats summarizes the grayscale intensity distribution of a frame.
type Stats struct {
	Mean      float64  // mean luminance, 0..255
	StdDev    float64  // standard deviation of luminance
	Min       uint8    // darkest pixel
	Max       uint8    // brightest pixel
	Histogram [256]int // per-intensity pixel counts
}

// Analysis is the scene classification for one frame plus the strategy
// order the cascade should follow.
type Analysis struct {
	Kind  Kind
	Stats Stats
	Order []Strategy
}

// Measure computes intensity statistics in a single pass. An empty or nil
// image yields zero stats.
func Measure(gray *image.Gray) Stats {
	var s Stats
	if gray == nil {
		return s
	}
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return s
	}

	s.Min = 255
	var sum, sumSq float64
	for y := range h {
		i0 := gray.PixOffset(b.Min.X, b.Min.Y+y)
		row := gray.Pix[i0 : i0+w]
		for _, v := range row {
			s.Histogram[v]++
			f := float64(v)
			sum += f
			sumSq += f * f
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
	}

	n := float64(w * h)
	s.Mean = sum / n
	variance := sumSq/n - s.Mean*s.Mean
	if variance < 0 {
		variance = 0
	}
	s.StdDev = math.Sqrt(variance)
	return s
}

// Classify maps intensity statistics to a scene kind. The checks run in
// priority order; the first match wins. The near-white regime outranks
// generic low contrast so white-on-white scenes reach the directional
// strategies.
func Classify(stats Stats) Kind {
	switch {
	case stats.Mean < 80:
		return KindLowLight
	case stats.Mean > 180 && stats.StdDev < 35:
		return KindLowDifferentiation
	case stats.StdDev < 30:
		return KindLowContrast
	default:
		return KindNormal
	}
}

// StrategyOrder returns the cascade strategy order for a scene kind.
// Callers receive a fresh slice.
func StrategyOrder(k Kind) []Strategy {
	switch k {
	case KindLowLight:
		return []Strategy{StrategyContrast, StrategyContour, StrategyLineCluster}
	case KindLowContrast:
		return []Strategy{StrategyContrast, StrategyDoG, StrategyContour, StrategyLineCluster}
	case KindLowDifferentiation:
		return []Strategy{StrategyDirectional, StrategyDoG, StrategyContrast, StrategyLineCluster}
	default:
		return []Strategy{StrategyContour, StrategyContrast, StrategyLineCluster}
	}
}

// Analyze measures, classifies and orders strategies for one frame.
func Analyze(gray *image.Gray) Analysis {
	stats := Measure(gray)
	kind := Classify(stats)
	return Analysis{
		Kind:  kind,
		Stats: stats,
		Order: StrategyOrder(kind),
	}
}
