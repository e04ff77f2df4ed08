package pipeline

import (
	"image"
	"image/color"

	"github.com/docshot/docshot/internal/utils"
)

// RenderOverlay draws the accepted detection over the frame: the
// document outline plus corner markers. The input image is untouched;
// callers get an RGBA copy even when nothing was found.
func RenderOverlay(img image.Image, fr *FrameResult) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.NewOverlay(img)
	if fr == nil || !fr.Detection.Found {
		return dst
	}

	outline := color.RGBA{G: 220, A: 255}
	marker := color.RGBA{R: 230, A: 255}
	utils.DrawPolygon(dst, fr.quad.Points(), outline, 2)
	for _, p := range fr.quad.Points() {
		utils.DrawCross(dst, p, marker, 6)
	}
	return dst
}
