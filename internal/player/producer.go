package player

import (
	"math"
	"sync/atomic"
)

// Producer serves fixed-size audio blocks to the output device. It reads
// the current Session through an atomic pointer so a track change never
// exposes a half-built session to the audio thread, and it reuses its
// block buffers so the hot path does not allocate.
//
// ProduceBlock must be called from one goroutine at a time.
type Producer struct {
	session atomic.Pointer[Session]
	volume  atomic.Uint64 // math.Float64bits

	stereo []float32
	mono   []float32
}

// NewProducer creates a Producer with buffers sized for blockSize frames.
func NewProducer(blockSize int) *Producer {
	if blockSize < 0 {
		blockSize = 0
	}
	p := &Producer{
		stereo: make([]float32, blockSize*2),
		mono:   make([]float32, blockSize),
	}
	p.SetVolume(1)
	return p
}

// SetSession hands a fully built session to the audio thread. nil unloads.
func (p *Producer) SetSession(s *Session) {
	p.session.Store(s)
}

// Session returns the session currently being played, or nil.
func (p *Producer) Session() *Session {
	return p.session.Load()
}

// SetVolume sets the output gain, clamped to [0, 1].
func (p *Producer) SetVolume(v float64) {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume.Store(math.Float64bits(v))
}

// Volume returns the output gain.
func (p *Producer) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// ProduceBlock returns the next frames frames as interleaved stereo (volume
// applied) and mono (pre-volume, for analysis). A block that runs past the
// end of the track is padded with silence and the cursor wraps to the start.
// With no session loaded both blocks are silent. The returned slices are
// reused by the next call.
func (p *Producer) ProduceBlock(frames int) (stereo, mono []float32) {
	if frames < 0 {
		frames = 0
	}
	if cap(p.mono) < frames {
		// only when the device asks for more than it was opened with
		p.stereo = make([]float32, frames*2)
		p.mono = make([]float32, frames)
	}
	stereo = p.stereo[:frames*2]
	mono = p.mono[:frames]

	s := p.session.Load()
	if s == nil {
		clear(stereo)
		clear(mono)
		return stereo, mono
	}

	start, count, _ := s.cursor.Advance(frames)
	copy(stereo[:count*2], s.stereo[start*2:(start+count)*2])
	copy(mono[:count], s.mono[start:start+count])
	clear(stereo[count*2:])
	clear(mono[count:])

	if vol := float32(p.Volume()); vol != 1 {
		for i := range stereo[:count*2] {
			stereo[i] *= vol
		}
	}
	return stereo, mono
}
