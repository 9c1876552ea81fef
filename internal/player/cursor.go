package player

import (
	"math"
	"sync/atomic"
)

// Cursor is the playback position, in frames, within one track. The audio
// thread advances it while the UI thread seeks and reads it, so the position
// lives in an atomic and Advance retries instead of locking.
type Cursor struct {
	pos   atomic.Int64
	total int64
}

// NewCursor creates a cursor at position 0 over total frames.
func NewCursor(total int) *Cursor {
	if total < 0 {
		total = 0
	}
	return &Cursor{total: int64(total)}
}

// Advance consumes up to n frames. It returns the start frame of the
// consumed range and its length, which is min(n, total-position). When the
// request reaches or passes the end, the cursor wraps to 0 and wrapped is
// true so the caller can pad the short block with silence.
func (c *Cursor) Advance(n int) (start, count int, wrapped bool) {
	if n <= 0 {
		return int(c.pos.Load()), 0, false
	}
	for {
		pos := c.pos.Load()
		remaining := c.total - pos
		got := int64(n)
		if got > remaining {
			got = remaining
		}
		next := pos + int64(n)
		wrapped = next >= c.total
		if wrapped {
			next = 0
		}
		if c.pos.CompareAndSwap(pos, next) {
			return int(pos), int(got), wrapped
		}
	}
}

// Seek sets the position to round(fraction * total). Fractions outside
// [0, 1] are clamped, NaN seeks to the start.
func (c *Cursor) Seek(fraction float64) {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	pos := int64(math.Round(fraction * float64(c.total)))
	c.pos.Store(min(max(pos, 0), c.total))
}

// SetPosition moves the cursor to an absolute frame, clamped into range.
func (c *Cursor) SetPosition(frame int) {
	c.pos.Store(min(max(int64(frame), 0), c.total))
}

// Reset moves the cursor back to the first frame.
func (c *Cursor) Reset() {
	c.pos.Store(0)
}

// Position returns the current frame offset.
func (c *Cursor) Position() int {
	return int(c.pos.Load())
}

// Total returns the number of frames the cursor spans.
func (c *Cursor) Total() int {
	return int(c.total)
}

// Fraction returns position / total, or 0 for an empty track.
func (c *Cursor) Fraction() float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.pos.Load()) / float64(c.total)
}
