package mempool

import "fmt"

// Handle identifies a buffer acquired from an Arena. The generation counter
// lets the arena detect use of a handle after its buffer was released.
type Handle struct {
	idx int
	gen uint32
}

type arenaSlot struct {
	buf  []float32
	gen  uint32
	live bool
}

// Arena hands out float32 scratch buffers keyed by opaque handles. Each
// analyzer owns one arena; it is not safe for concurrent use. Buffers come
// from and return to the shared size-class pools, so releasing a handle
// makes its memory available to the next acquisition.
type Arena struct {
	slots []arenaSlot
	free  []int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Acquire reserves a float32 buffer with n elements and returns its handle.
func (a *Arena) Acquire(n int) Handle {
	buf := GetFloat32(n)
	var idx int
	if k := len(a.free); k > 0 {
		idx = a.free[k-1]
		a.free = a.free[:k-1]
	} else {
		idx = len(a.slots)
		a.slots = append(a.slots, arenaSlot{})
	}
	s := &a.slots[idx]
	s.buf = buf
	s.live = true
	return Handle{idx: idx, gen: s.gen}
}

// Float32 resolves a handle to its buffer. It panics if the handle was
// already released or belongs to a different arena epoch.
func (a *Arena) Float32(h Handle) []float32 {
	s := a.slot(h)
	return s.buf
}

// Release returns the handle's buffer to the pool and invalidates the
// handle. Releasing the same handle twice panics.
func (a *Arena) Release(h Handle) {
	s := a.slot(h)
	PutFloat32(s.buf)
	s.buf = nil
	s.live = false
	s.gen++
	a.free = append(a.free, h.idx)
}

// Reset releases every live buffer. Outstanding handles become invalid.
func (a *Arena) Reset() {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		PutFloat32(s.buf)
		s.buf = nil
		s.live = false
		s.gen++
		a.free = append(a.free, i)
	}
}

// Live reports how many buffers are currently acquired.
func (a *Arena) Live() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].live {
			n++
		}
	}
	return n
}

func (a *Arena) slot(h Handle) *arenaSlot {
	if h.idx < 0 || h.idx >= len(a.slots) {
		panic(fmt.Sprintf("mempool: arena handle out of range (idx=%d, slots=%d)", h.idx, len(a.slots)))
	}
	s := &a.slots[h.idx]
	if !s.live || s.gen != h.gen {
		panic(fmt.Sprintf("mempool: use of released arena handle (idx=%d, gen=%d, slot gen=%d)", h.idx, h.gen, s.gen))
	}
	return s
}
