package edges

import (
	"fmt"
	"image"

	"github.com/docshot/docshot/internal/scene"
	"github.com/docshot/docshot/internal/utils"
)

// Difference-of-Gaussians band for the DoG strategy.
const (
	dogSigmaNarrow = 1.0
	dogSigmaWide   = 2.5
	dogPercentile  = 0.90
)

// Extractor runs the edge pipeline for a chosen strategy. It owns the
// directional kernel and its offset table; the table is rebuilt when the
// working width changes, so an Extractor is not safe for concurrent use.
type Extractor struct {
	cfg   Config
	kern  Kernel
	table *offsetTable
}

// NewExtractor validates the configuration and resolves the kernel.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("edge config: %w", err)
	}
	return &Extractor{cfg: cfg, kern: selectKernel(cfg.Kernel)}, nil
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config { return e.cfg }

// KernelName reports which directional kernel implementation is active.
func (e *Extractor) KernelName() string { return e.kern.Name() }

// Extract produces the binary edge map for one strategy, along with the
// prepared working-resolution gray plane and the scale back to the
// original frame. The caller owns the returned map and must Release it.
func (e *Extractor) Extract(img image.Image, strategy scene.Strategy) (*Map, *image.Gray, Scale, error) {
	gray, scale := Prepare(img, e.cfg.WorkingWidth)
	m, err := e.FromGray(gray, strategy)
	if err != nil {
		return nil, nil, Scale{}, err
	}
	return m, gray, scale, nil
}

// FromGray runs the strategy prefilter and binarization on an already
// prepared gray plane. Gradient-based strategies carry their gradient
// planes in the map; binary-output strategies leave them nil.
func (e *Extractor) FromGray(gray *image.Gray, strategy scene.Strategy) (*Map, error) {
	var m *Map
	switch strategy {
	case scene.StrategyContour:
		m = e.gradientMap(gray)
	case scene.StrategyContrast:
		m = e.gradientMap(Equalize(gray))
	case scene.StrategyDoG:
		bits, w, h := DoGBits(gray, dogSigmaNarrow, dogSigmaWide, dogPercentile)
		m = &Map{Bits: bits, Width: w, Height: h}
	case scene.StrategyDirectional:
		w := gray.Bounds().Dx()
		if e.table == nil || e.table.width != w {
			e.table = newOffsetTable(w)
		}
		bits, bw, bh := DirectionalBits(gray, e.kern, e.table)
		m = &Map{Bits: bits, Width: bw, Height: bh}
	case scene.StrategyLineCluster:
		return nil, fmt.Errorf("strategy %s consumes the gradient field directly, not an edge map", strategy)
	default:
		return nil, fmt.Errorf("unknown edge strategy %d", int(strategy))
	}

	Close3x3(m.Bits, m.Width, m.Height)
	SuppressSpanningLines(m, e.cfg)
	return m, nil
}

// gradientMap is the shared blur → Sobel → hysteresis path.
func (e *Extractor) gradientMap(gray *image.Gray) *Map {
	blurred := utils.BlurGray(gray, e.cfg.BlurSigma)
	gx, gy, mag, w, h := Gradients(blurred)

	stats := scene.Measure(blurred)
	low, high := Thresholds(stats.Mean, e.cfg)
	bits := Hysteresis(mag, w, h, low, high)

	return &Map{Bits: bits, Width: w, Height: h, GX: gx, GY: gy, Mag: mag}
}
