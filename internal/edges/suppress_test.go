package edges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMap(w, h int) *Map {
	return &Map{Bits: make([]uint8, w*h), Width: w, Height: h}
}

func setHLine(m *Map, y, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		m.Bits[y*m.Width+x] = 255
	}
}

func setVLine(m *Map, x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		m.Bits[y*m.Width+x] = 255
	}
}

func TestSuppress_ErasesFullSpanLine(t *testing.T) {
	m := newTestMap(100, 80)
	setHLine(m, 10, 0, 99)         // grout line, border to border
	setHLine(m, 40, 30, 70)        // document edge, well inside
	require.Equal(t, 141, m.CountNonZero())

	erased := SuppressSpanningLines(m, DefaultConfig())

	assert.Equal(t, 1, erased)
	for x := range 100 {
		assert.False(t, m.At(x, 10), "grout line x=%d", x)
	}
	for x := 30; x <= 70; x++ {
		assert.True(t, m.At(x, 40), "document edge x=%d", x)
	}
}

func TestSuppress_SparesLineEndingAwayFromBorder(t *testing.T) {
	// Long line whose far end stops 20 px short of the right border:
	// span passes but the opposite-border test fails.
	m := newTestMap(120, 90)
	setHLine(m, 40, 10, 100)

	erased := SuppressSpanningLines(m, DefaultConfig())

	assert.Zero(t, erased)
	assert.True(t, m.At(50, 40), "line must survive")
}

func TestSuppress_ErasesDiagonal(t *testing.T) {
	m := newTestMap(100, 100)
	for i := range 100 {
		m.Bits[i*100+i] = 255
	}

	erased := SuppressSpanningLines(m, DefaultConfig())

	assert.Equal(t, 1, erased)
	assert.Zero(t, m.CountNonZero())
}

func TestSuppress_ErasesVerticalSpanningLine(t *testing.T) {
	m := newTestMap(100, 80)
	setVLine(m, 50, 0, 79)

	erased := SuppressSpanningLines(m, DefaultConfig())

	assert.Equal(t, 1, erased)
	for y := range 80 {
		assert.False(t, m.At(50, y), "y=%d", y)
	}
}

func TestSuppress_CountsDistinctLines(t *testing.T) {
	m := newTestMap(100, 80)
	setHLine(m, 10, 0, 99)
	setHLine(m, 50, 0, 99)

	erased := SuppressSpanningLines(m, DefaultConfig())

	assert.Equal(t, 2, erased)
	assert.Zero(t, m.CountNonZero())
}

func TestSuppress_SparesDocumentRectangle(t *testing.T) {
	// Rectangle outline covering ~60% of each dimension. Every side is
	// below the span threshold, so nothing is touched.
	m := newTestMap(100, 80)
	setHLine(m, 15, 20, 80)
	setHLine(m, 65, 20, 80)
	setVLine(m, 20, 15, 65)
	setVLine(m, 80, 15, 65)
	before := m.CountNonZero()

	erased := SuppressSpanningLines(m, DefaultConfig())

	assert.Zero(t, erased)
	assert.Equal(t, before, m.CountNonZero())
}

func TestSuppress_EmptyMap(t *testing.T) {
	m := newTestMap(60, 40)
	assert.Zero(t, SuppressSpanningLines(m, DefaultConfig()))

	empty := &Map{}
	assert.Zero(t, SuppressSpanningLines(empty, DefaultConfig()))
}
