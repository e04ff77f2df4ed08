package utils

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// ToGray converts img to 8-bit grayscale using integer BT.601 luma weights.
// Grayscale inputs are returned as-is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))

	switch src := img.(type) {
	case *image.NRGBA:
		for y := range h {
			s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			d := gray.Pix[y*gray.Stride:]
			for x := range w {
				o := x * 4
				d[x] = lumaByte(s[o], s[o+1], s[o+2])
			}
		}
	case *image.RGBA:
		for y := range h {
			s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			d := gray.Pix[y*gray.Stride:]
			for x := range w {
				o := x * 4
				d[x] = lumaByte(s[o], s[o+1], s[o+2])
			}
		}
	default:
		for y := range h {
			d := gray.Pix[y*gray.Stride:]
			for x := range w {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				d[x] = lumaByte(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			}
		}
	}
	return gray
}

// lumaByte converts RGB bytes to a BT.601 luma byte.
func lumaByte(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
}

// DownscaleToWidth resizes img to the given width, preserving aspect ratio.
// Images at or below the target width are returned unchanged; nothing is
// ever upscaled.
func DownscaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// BlurGray applies a Gaussian blur to a grayscale image and returns the
// result as grayscale again.
func BlurGray(gray *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return gray
	}
	return ToGray(imaging.Blur(gray, sigma))
}

// NewOverlay copies img into a fresh RGBA canvas for annotation drawing.
func NewOverlay(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// DrawPolygon draws connected line segments and closes the polygon.
func DrawPolygon(dst *image.RGBA, pts []Point, col color.Color, thickness int) {
	if len(pts) < 2 {
		return
	}
	ip := make([]image.Point, len(pts))
	for i, p := range pts {
		ip[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	for i := range ip {
		drawLine(dst, ip[i], ip[(i+1)%len(ip)], col, thickness)
	}
}

// DrawCross draws a small cross marker centered on p.
func DrawCross(dst *image.RGBA, p Point, col color.Color, arm int) {
	x := int(math.Round(p.X))
	y := int(math.Round(p.Y))
	drawLine(dst, image.Pt(x-arm, y), image.Pt(x+arm, y), col, 1)
	drawLine(dst, image.Pt(x, y-arm), image.Pt(x, y+arm), col, 1)
}

// drawLine draws a line between two points using a simple Bresenham variant.
func drawLine(dst *image.RGBA, a, b image.Point, col color.Color, thickness int) {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		drawThickPoint(dst, x0, y0, col, thickness)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawThickPoint(dst *image.RGBA, x, y int, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r := (thickness - 1) / 2
	for yy := y - r; yy <= y+r; yy++ {
		for xx := x - r; xx <= x+r; xx++ {
			if image.Pt(xx, yy).In(dst.Bounds()) {
				dst.Set(xx, yy, col)
			}
		}
	}
}
