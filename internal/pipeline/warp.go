package pipeline

import (
	"errors"
	"image"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/rectify"
	"github.com/docshot/docshot/internal/utils"
)

// RectifyDocument warps the detected document into an upright image
// with the estimated true aspect ratio. A nil estimate falls back to
// the shape observed in the frame.
func (a *Analyzer) RectifyDocument(img image.Image, quad utils.Quad, est *aspect.Estimate) (*image.RGBA, error) {
	if a == nil || a.closed {
		return nil, errors.New("analyzer is closed")
	}
	ratio := 0.0
	if est != nil {
		ratio = est.Ratio
	}
	return rectify.Warp(img, quad, ratio, a.cfg.Rectify)
}
