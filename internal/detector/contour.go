package detector

import "github.com/docshot/docshot/internal/utils"

// Moore-neighbor clockwise order: E, SE, S, SW, W, NW, N, NE.
var (
	mooreDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	mooreDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// traceContour extracts the boundary polygon of a labeled component via
// Moore-neighbor tracing, restricted to the component's bounding box.
// Collinear runs are merged as they are appended. Points are pixel
// centers.
func traceContour(labels []int32, w, h int, c component) []utils.Point {
	sx, sy := startingBoundaryPixel(labels, w, h, c)
	if sx < 0 {
		return nil
	}

	pts := make([]utils.Point, 0, 64)
	appendPoint := func(x, y int) {
		p := utils.Point{X: float64(x), Y: float64(y)}
		if n := len(pts); n >= 2 {
			a, b := pts[n-2], pts[n-1]
			if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}
	appendPoint(sx, sy)

	isLabel := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == int32(c.id)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy // backtrack starts to the left of the start pixel
	maxSteps := 4*c.count + 8

	for range maxSteps {
		nx, ny, found := nextBoundaryPixel(isLabel, cx, cy, bx, by)
		if !found {
			break
		}
		bx, by = cx, cy
		cx, cy = nx, ny
		if cx == sx && cy == sy {
			break
		}
		appendPoint(cx, cy)
	}

	// Merge a collinear seam across the closing edge.
	if n := len(pts); n >= 3 {
		a, b, p := pts[n-2], pts[n-1], pts[0]
		if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
			pts = pts[:n-1]
		}
	}
	return pts
}

// startingBoundaryPixel scans the bounding box for the first pixel of
// the component that has a background 4-neighbor.
func startingBoundaryPixel(labels []int32, w, h int, c component) (int, int) {
	id := int32(c.id)
	at := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == id
	}
	for y := c.minY; y <= c.maxY; y++ {
		for x := c.minX; x <= c.maxX; x++ {
			if !at(x, y) {
				continue
			}
			if !at(x+1, y) || !at(x-1, y) || !at(x, y+1) || !at(x, y-1) {
				return x, y
			}
		}
	}
	return -1, -1
}

// nextBoundaryPixel walks the Moore neighborhood clockwise starting
// just after the backtrack direction.
func nextBoundaryPixel(isLabel func(int, int) bool, cx, cy, bx, by int) (int, int, bool) {
	dx, dy := bx-cx, by-cy
	start := 0
	for i := range 8 {
		if mooreDX[i] == dx && mooreDY[i] == dy {
			start = i + 1
			break
		}
	}
	for k := range 8 {
		i := (start + k) % 8
		tx, ty := cx+mooreDX[i], cy+mooreDY[i]
		if isLabel(tx, ty) {
			return tx, ty, true
		}
	}
	return 0, 0, false
}
