package rotation

import "sync/atomic"

// Cursor is a monotonically advancing position shared by every caller of a
// pool. Its only reset is process restart.
type Cursor struct {
	n atomic.Uint64
}

// Claim atomically advances the cursor and returns its previous value
// modulo size. It returns 0 when size is not positive.
func (c *Cursor) Claim(size int) int {
	if size <= 0 {
		return 0
	}
	prev := c.n.Add(1) - 1
	return int(prev % uint64(size))
}
