package visualizer

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Mapper turns one mono block into bar magnitudes: a real FFT over the whole
// block, bins grouped on a logarithmic schedule, and a per-bar boost that
// grows with frequency.
//
// Map output is a pure function of the block, the bar count and the boost
// slope. A Mapper is not safe for concurrent use.
type Mapper struct {
	bars  int
	slope float64

	size   int
	fft    *fourier.FFT
	seq    []float64
	coeffs []complex128
	bounds []int
	out    []float64
}

// NewMapper creates a Mapper producing bars values per block.
func NewMapper(bars int, boostSlope float64) *Mapper {
	if bars < 1 {
		bars = 1
	}
	return &Mapper{
		bars:  bars,
		slope: boostSlope,
		out:   make([]float64, bars),
	}
}

// Bars returns the number of bars produced per block.
func (m *Mapper) Bars() int { return m.bars }

// Prepare sizes the transform for blocks of n samples. Map calls it on every
// block, so sizing up front keeps the first audio block from allocating.
func (m *Mapper) Prepare(n int) {
	if n == m.size && (m.fft != nil || n < 2) {
		return
	}
	m.size = n
	if n < 2 {
		m.fft = nil
		return
	}
	m.fft = fourier.NewFFT(n)
	m.seq = make([]float64, n)
	m.coeffs = make([]complex128, n/2+1)
	m.bounds = LogIndices(n/2+1, m.bars)
}

// Map computes the bar values for block. The returned slice is reused by
// the next call.
func (m *Mapper) Map(block []float32) []float64 {
	m.Prepare(len(block))
	if m.fft == nil {
		clear(m.out)
		return m.out
	}

	for i, v := range block {
		m.seq[i] = float64(v)
	}
	m.coeffs = m.fft.Coefficients(m.coeffs, m.seq)

	bins := len(m.coeffs)
	for i := range m.bars {
		start, end := m.bounds[i], m.bounds[i+1]
		if start >= end || end > bins {
			m.out[i] = 0
			continue
		}
		var sum float64
		for _, c := range m.coeffs[start:end] {
			sum += cmplx.Abs(c)
		}
		m.out[i] = sum / float64(end-start) * m.boost(i)
	}
	return m.out
}

func (m *Mapper) boost(i int) float64 {
	return 0.3 + float64(i)/float64(m.bars)*m.slope
}

// LogIndices returns the n+1 bin boundaries of n bars over bins frequency
// bins. Bar i covers [b[i], b[i+1]). The first boundary is 0, the rest are
// spaced logarithmically from bin 2 up to bins and forced strictly
// increasing, so trailing boundaries may pass bins when bins is small.
func LogIndices(bins, n int) []int {
	if n < 1 {
		return []int{0}
	}
	b := make([]int, n+1)
	if n == 1 {
		b[1] = max(bins, 1)
		return b
	}

	lo := math.Log(2)
	hi := math.Log(float64(max(bins, 1)))
	step := (hi - lo) / float64(n-1)
	for i := range n {
		b[i+1] = int(math.Round(math.Exp(lo + float64(i)*step)))
	}
	for i := 1; i <= n; i++ {
		if b[i] <= b[i-1] {
			b[i] = b[i-1] + 1
		}
	}
	return b
}
