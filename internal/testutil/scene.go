package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/docshot/docshot/internal/utils"
)

// ImageSize represents common scene dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common scene sizes.
	SmallScene  = ImageSize{320, 240}
	MediumScene = ImageSize{640, 480}
	LargeScene  = ImageSize{1024, 768}
)

// SceneSpec describes a synthetic capture: a bright sheet drawn as a
// filled quadrilateral on a darker background, with optional sensor
// noise, horizontal illumination falloff and interior text lines.
type SceneSpec struct {
	Size      ImageSize
	Corners   utils.Quad // sheet corners in pixel coordinates, tl tr br bl
	Bg        uint8      // background gray level
	Fill      uint8      // sheet gray level
	Noise     float64    // fraction of pixels perturbed, 0 disables
	Gradient  float64    // left-to-right brightness drop, 0..1
	TextLines int        // interior text lines, 0 leaves the sheet blank
	Seed      int64      // noise seed, same seed gives identical pixels
}

// DefaultSceneSpec returns a frontal 300x400 sheet centered in a
// 640x480 frame, well separated from the background.
func DefaultSceneSpec() SceneSpec {
	return SceneSpec{
		Size: MediumScene,
		Corners: utils.Quad{
			{X: 170, Y: 40}, {X: 470, Y: 40}, {X: 470, Y: 440}, {X: 170, Y: 440},
		},
		Bg:   40,
		Fill: 200,
		Seed: 1,
	}
}

// TiltedSceneSpec returns the default sheet viewed off-axis, so borders
// cut through pixel interiors and the renderer produces intermediate
// levels along them.
func TiltedSceneSpec() SceneSpec {
	s := DefaultSceneSpec()
	s.Corners = utils.Quad{
		{X: 190, Y: 70}, {X: 480, Y: 95}, {X: 455, Y: 400}, {X: 160, Y: 370},
	}
	return s
}

// Render draws the scene into a grayscale-valued RGBA image.
func (s SceneSpec) Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Size.Width, s.Size.Height))

	var rng *rand.Rand
	if s.Noise > 0 {
		rng = rand.New(rand.NewSource(s.Seed))
	}

	for y := range s.Size.Height {
		row := img.PixOffset(0, y)
		for x := range s.Size.Width {
			cov := s.coverage(float64(x), float64(y))
			v := float64(s.Bg) + cov*(float64(s.Fill)-float64(s.Bg))
			if s.Gradient > 0 {
				v *= 1 - s.Gradient*float64(x)/float64(s.Size.Width)
			}
			if rng != nil && rng.Float64() < s.Noise {
				v += float64(rng.Intn(61) - 30)
			}
			g := clampLevel(v)
			i := row + x*4
			img.Pix[i] = g
			img.Pix[i+1] = g
			img.Pix[i+2] = g
			img.Pix[i+3] = 255
		}
	}

	if s.TextLines > 0 {
		s.drawTextLines(img)
	}
	return img
}

// coverage samples a 2x2 grid inside the pixel so sheet borders land
// with soft intermediate values instead of a hard staircase.
func (s SceneSpec) coverage(x, y float64) float64 {
	offsets := [2]float64{0.25, 0.75}
	n := 0
	for _, dy := range offsets {
		for _, dx := range offsets {
			if insideQuad(s.Corners, x+dx, y+dy) {
				n++
			}
		}
	}
	return float64(n) / 4
}

// insideQuad tests containment in a convex quadrilateral by requiring a
// consistent cross-product sign along the boundary.
func insideQuad(q utils.Quad, x, y float64) bool {
	var sign float64
	for i := range q {
		a, b := q[i], q[(i+1)%4]
		c := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if c == 0 {
			continue
		}
		if sign == 0 {
			sign = c
			continue
		}
		if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// drawTextLines renders evenly spaced dark text rows across the sheet
// interior, inset from the borders so glyphs stay on the sheet for
// moderate tilts.
func (s SceneSpec) drawTextLines(img *image.RGBA) {
	const body = "quarterly report summary and totals"

	bounds := s.Corners.Bounds()
	insetX := bounds.Width() * 0.12
	top := bounds.MinY + bounds.Height()*0.12
	bottom := bounds.MaxY - bounds.Height()*0.12
	step := (bottom - top) / float64(s.TextLines)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: s.Bg / 2}),
		Face: basicfont.Face7x13,
	}
	for i := range s.TextLines {
		y := top + (float64(i)+0.5)*step
		drawer.Dot = fixed.P(int(bounds.MinX+insetX), int(y))
		drawer.DrawString(body)
	}
}

// RotateScene rotates a rendered scene by angleDeg, filling exposed
// regions with the background level. Useful for multi-view sequences.
func RotateScene(img image.Image, angleDeg float64, bg uint8) *image.RGBA {
	rotated := imaging.Rotate(img, angleDeg, color.Gray{Y: bg})
	out := image.NewRGBA(rotated.Bounds())
	draw.Draw(out, out.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
	return out
}

func clampLevel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
