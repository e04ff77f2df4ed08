// Package rectify resamples a detected document quadrilateral into an
// upright axis-aligned image with the document's true aspect ratio.
package rectify

import (
	"fmt"
	"image"
	"math"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/utils"
)

// Warp maps the document bounded by quad onto a rectangle whose sides
// follow ratio, the short side over the long side in (0,1]. A
// non-positive ratio falls back to the ratio observed in the frame, so
// callers without an estimate still get a usable crop. Corners may
// arrive in any order; a landscape document stays landscape.
func Warp(img image.Image, quad utils.Quad, ratio float64, cfg Config) (*image.RGBA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("warp config: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	q := aspect.OrderCorners(quad)
	if q.IsDegenerate() {
		return nil, fmt.Errorf("degenerate document quad %v", quad)
	}

	sides := q.Sides()
	obsW := (sides[0] + sides[2]) / 2
	obsH := (sides[1] + sides[3]) / 2
	if ratio <= 0 || ratio > 1 {
		ratio = math.Min(obsW, obsH) / math.Max(obsW, obsH)
	}

	long := float64(cfg.OutputLong)
	if obsLong := math.Max(obsW, obsH); cfg.MaxScale > 0 && long > obsLong*cfg.MaxScale {
		long = obsLong * cfg.MaxScale
	}
	short := long * ratio

	var dstW, dstH int
	if obsW >= obsH {
		dstW, dstH = round(long), round(short)
	} else {
		dstW, dstH = round(short), round(long)
	}
	if dstW < 2 {
		dstW = 2
	}
	if dstH < 2 {
		dstH = 2
	}

	dst := utils.Quad{
		{X: 0, Y: 0},
		{X: float64(dstW - 1), Y: 0},
		{X: float64(dstW - 1), Y: float64(dstH - 1)},
		{X: 0, Y: float64(dstH - 1)},
	}
	hom, ok := cornerHomography(dst, q)
	if !ok {
		return nil, fmt.Errorf("homography solve failed for %v", quad)
	}

	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	sb := img.Bounds()
	for y := range dstH {
		for x := range dstW {
			sx, sy := project(hom, float64(x), float64(y))
			out.SetRGBA(x, y, sampleBilinear(img, sx+float64(sb.Min.X), sy+float64(sb.Min.Y)))
		}
	}
	return out, nil
}

func round(v float64) int {
	return int(v + 0.5)
}
