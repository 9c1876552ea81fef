package visualizer

import "sync"

// Options configures a Visualizer.
type Options struct {
	Bars        int
	BoostSlope  float64
	DisplayGain float64
	Smoothing   float64
	MaxHeight   float64
	BlockSize   int
}

// Visualizer couples the per-block Mapper with the per-frame Smoother.
// OnAudioBlock runs on the audio thread and publishes the latest raw bars;
// CurrentDisplayHeights runs on the render tick and smooths whatever was
// published last. The two sides only share the raw slice, guarded by a
// mutex that is held for a copy and nothing else.
type Visualizer struct {
	mapper *Mapper

	mu  sync.Mutex
	raw []float64

	renderMu sync.Mutex
	smoother *Smoother
	latest   []float64
}

// New creates a Visualizer. The FFT is sized for opts.BlockSize up front.
func New(opts Options) *Visualizer {
	m := NewMapper(opts.Bars, opts.BoostSlope)
	m.Prepare(opts.BlockSize)
	return &Visualizer{
		mapper:   m,
		raw:      make([]float64, m.Bars()),
		smoother: NewSmoother(m.Bars(), opts.DisplayGain, opts.Smoothing, opts.MaxHeight),
		latest:   make([]float64, m.Bars()),
	}
}

// Bars returns the number of bars.
func (v *Visualizer) Bars() int { return v.mapper.Bars() }

// MaxHeight returns the ceiling of displayed heights.
func (v *Visualizer) MaxHeight() float64 { return v.smoother.MaxHeight() }

// OnAudioBlock analyses one mono block. It must only be called from one
// goroutine at a time, which the device guarantees.
func (v *Visualizer) OnAudioBlock(mono []float32) {
	bars := v.mapper.Map(mono)
	v.mu.Lock()
	copy(v.raw, bars)
	v.mu.Unlock()
}

// RawHeights returns a copy of the latest unsmoothed bar values.
func (v *Visualizer) RawHeights() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.raw...)
}

// CurrentDisplayHeights advances the smoother by one render frame using the
// latest raw bars and returns a copy of the displayed heights.
func (v *Visualizer) CurrentDisplayHeights() []float64 {
	v.renderMu.Lock()
	defer v.renderMu.Unlock()

	v.mu.Lock()
	copy(v.latest, v.raw)
	v.mu.Unlock()

	return append([]float64(nil), v.smoother.Update(v.latest)...)
}

// Reset zeroes the raw and displayed heights immediately.
func (v *Visualizer) Reset() {
	v.mu.Lock()
	clear(v.raw)
	v.mu.Unlock()

	v.renderMu.Lock()
	v.smoother.Reset()
	v.renderMu.Unlock()
}
