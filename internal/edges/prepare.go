package edges

import (
	"image"

	"github.com/docshot/docshot/internal/utils"
)

// Scale maps working-resolution coordinates back to the original frame.
type Scale struct {
	Factor     float64 // original px per working px, ≥ 1
	OrigWidth  int
	OrigHeight int
}

// ToOriginal maps a working-resolution point into original coordinates.
func (s Scale) ToOriginal(p utils.Point) utils.Point {
	return utils.Point{X: p.X * s.Factor, Y: p.Y * s.Factor}
}

// QuadToOriginal maps all four corners into original coordinates.
func (s Scale) QuadToOriginal(q utils.Quad) utils.Quad {
	var out utils.Quad
	for i, p := range q {
		out[i] = s.ToOriginal(p)
	}
	return out
}

// Prepare converts a frame to grayscale at the working width. Frames
// narrower than the working width keep their size; the returned Scale
// maps detection results back to the original resolution.
func Prepare(img image.Image, workingWidth int) (*image.Gray, Scale) {
	origW := img.Bounds().Dx()
	origH := img.Bounds().Dy()

	scaled := utils.DownscaleToWidth(img, workingWidth)
	gray := utils.ToGray(scaled)

	factor := 1.0
	if w := gray.Bounds().Dx(); w > 0 && w < origW {
		factor = float64(origW) / float64(w)
	}
	return gray, Scale{Factor: factor, OrigWidth: origW, OrigHeight: origH}
}
