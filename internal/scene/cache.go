package scene

// DefaultCacheTTL is how many consecutive frames reuse one analysis.
const DefaultCacheTTL = 10

// Cache amortizes scene analysis across consecutive frames. Lighting
// changes slowly relative to frame rate, so an analysis is served for up
// to TTL frames before a recompute, keyed by time rather than content.
// Not safe for concurrent use; each analyzer owns its own cache.
type Cache struct {
	ttl  int
	left int
	a    Analysis
	ok   bool
	gen  uint64
}

// NewCache creates a cache serving each analysis for ttl frames.
// Non-positive ttl falls back to DefaultCacheTTL.
func NewCache(ttl int) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl}
}

// Get returns the cached analysis if it is still fresh, consuming one
// frame of its lifetime.
func (c *Cache) Get() (Analysis, bool) {
	if !c.ok || c.left <= 0 {
		return Analysis{}, false
	}
	c.left--
	return c.a, true
}

// Put stores a fresh analysis and restarts its lifetime.
func (c *Cache) Put(a Analysis) {
	c.a = a
	c.ok = true
	c.left = c.ttl
	c.gen++
}

// Invalidate drops the cached analysis. Callers invalidate on resolution
// change or any other context switch.
func (c *Cache) Invalidate() {
	c.ok = false
	c.left = 0
	c.gen++
}

// Generation increments on every Put and Invalidate.
func (c *Cache) Generation() uint64 {
	return c.gen
}
