package visualizer

import "math"

// Smoother blends successive raw bar values into displayed heights. It runs
// at the render cadence, not the audio cadence, so it may see the same raw
// values twice or skip some.
type Smoother struct {
	gain      float64
	smoothing float64
	max       float64
	heights   []float64
}

// NewSmoother creates a Smoother for bars bars. Raw values are multiplied by
// gain, and smoothing is the share of the previous height kept per update.
func NewSmoother(bars int, gain, smoothing, maxHeight float64) *Smoother {
	if smoothing < 0 || math.IsNaN(smoothing) {
		smoothing = 0
	}
	if smoothing >= 1 {
		smoothing = 0.99
	}
	return &Smoother{
		gain:      gain,
		smoothing: smoothing,
		max:       maxHeight,
		heights:   make([]float64, max(bars, 0)),
	}
}

// Update folds raw into the displayed heights and returns them. The result
// is always within [0, max height]; NaN inputs count as silence. Missing raw
// entries count as 0. The returned slice is reused by the next call.
func (s *Smoother) Update(raw []float64) []float64 {
	keep := 1 - s.smoothing
	for i := range s.heights {
		var v float64
		if i < len(raw) && !math.IsNaN(raw[i]) {
			v = raw[i] * s.gain
		}
		h := s.heights[i]*s.smoothing + v*keep
		switch {
		case math.IsNaN(h) || h < 0:
			h = 0
		case h > s.max:
			h = s.max
		}
		s.heights[i] = h
	}
	return s.heights
}

// Heights returns the current displayed heights without updating them.
func (s *Smoother) Heights() []float64 { return s.heights }

// MaxHeight returns the clamp ceiling.
func (s *Smoother) MaxHeight() float64 { return s.max }

// Reset drops every height to 0 at once.
func (s *Smoother) Reset() {
	clear(s.heights)
}
