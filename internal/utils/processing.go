package utils

import (
	"errors"
	"fmt"
	"image"
)

// ProcessingError represents a failure in an image processing stage.
type ProcessingError struct {
	Operation string
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// ImageConstraints bounds the frame sizes the analyzer accepts.
type ImageConstraints struct {
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
}

// DefaultImageConstraints returns the constraints for boundary detection.
// Frames below the minimum carry too little edge evidence for a stable quad.
func DefaultImageConstraints() ImageConstraints {
	return ImageConstraints{
		MinWidth:  64,
		MinHeight: 64,
		MaxWidth:  8192,
		MaxHeight: 8192,
	}
}

// ValidateImage checks the frame dimensions against the constraints.
func ValidateImage(img image.Image, c ImageConstraints) error {
	if img == nil {
		return &ProcessingError{Operation: "validate", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < c.MinWidth || h < c.MinHeight {
		return &ProcessingError{
			Operation: "validate",
			Err:       fmt.Errorf("image too small: %dx%d < %dx%d", w, h, c.MinWidth, c.MinHeight),
		}
	}
	if c.MaxWidth > 0 && (w > c.MaxWidth || h > c.MaxHeight) {
		return &ProcessingError{
			Operation: "validate",
			Err:       fmt.Errorf("image too large: %dx%d > %dx%d", w, h, c.MaxWidth, c.MaxHeight),
		}
	}
	return nil
}
