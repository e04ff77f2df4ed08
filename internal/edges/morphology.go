package edges

import (
	"github.com/docshot/docshot/internal/mempool"
)

// Close3x3 performs one dilation followed by one erosion with a 3×3
// structuring element, bridging single-pixel gaps in edge chains. The
// plane is modified in place; windows are clamped at the frame border.
func Close3x3(bits []uint8, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	tmp := mempool.GetUint8(w * h)
	defer mempool.PutUint8(tmp)

	dilate3x3(bits, tmp, w, h)
	erode3x3(tmp, bits, w, h)
}

func dilate3x3(src, dst []uint8, w, h int) {
	for y := range h {
		y0, y1 := maxInt(y-1, 0), minInt(y+1, h-1)
		for x := range w {
			x0, x1 := maxInt(x-1, 0), minInt(x+1, w-1)
			var v uint8
			for ny := y0; ny <= y1 && v == 0; ny++ {
				row := ny * w
				for nx := x0; nx <= x1; nx++ {
					if src[row+nx] != 0 {
						v = 255
						break
					}
				}
			}
			dst[y*w+x] = v
		}
	}
}

func erode3x3(src, dst []uint8, w, h int) {
	for y := range h {
		y0, y1 := maxInt(y-1, 0), minInt(y+1, h-1)
		for x := range w {
			x0, x1 := maxInt(x-1, 0), minInt(x+1, w-1)
			v := uint8(255)
			for ny := y0; ny <= y1 && v != 0; ny++ {
				row := ny * w
				for nx := x0; nx <= x1; nx++ {
					if src[row+nx] == 0 {
						v = 0
						break
					}
				}
			}
			dst[y*w+x] = v
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
