package player

import (
	"fmt"
	"time"

	"github.com/olivier-w/cdviz/internal/util"
)

// Session binds one decoded track to playback: an interleaved stereo array,
// the mono analysis array derived from it at load time, and the cursor.
// The sample arrays are never written after NewSession returns; a track
// change builds a new Session rather than mutating this one.
type Session struct {
	stereo     []float32
	mono       []float32
	frames     int
	sampleRate int
	cursor     *Cursor
}

// NewSession takes ownership of pcm and derives both views. Mono sources
// are duplicated to stereo; multi-channel sources are averaged to mono and
// their first two channels feed the stereo view.
func NewSession(pcm *PCM) (*Session, error) {
	if pcm == nil || pcm.Channels <= 0 {
		return nil, fmt.Errorf("session needs at least one channel")
	}
	if pcm.SampleRate <= 0 {
		return nil, fmt.Errorf("session needs a positive sample rate, got %d", pcm.SampleRate)
	}

	frames := pcm.Frames()
	ch := pcm.Channels
	mono := make([]float32, frames)
	var stereo []float32

	switch ch {
	case 1:
		copy(mono, pcm.Samples[:frames])
		stereo = make([]float32, frames*2)
		for i, s := range mono {
			stereo[i*2] = s
			stereo[i*2+1] = s
		}
	case 2:
		stereo = pcm.Samples[:frames*2]
		for i := range frames {
			mono[i] = (stereo[i*2] + stereo[i*2+1]) / 2
		}
	default:
		stereo = make([]float32, frames*2)
		inv := 1 / float32(ch)
		for i := range frames {
			base := i * ch
			var sum float32
			for c := range ch {
				sum += pcm.Samples[base+c]
			}
			mono[i] = sum * inv
			stereo[i*2] = pcm.Samples[base]
			stereo[i*2+1] = pcm.Samples[base+1]
		}
	}

	return &Session{
		stereo:     stereo,
		mono:       mono,
		frames:     frames,
		sampleRate: pcm.SampleRate,
		cursor:     NewCursor(frames),
	}, nil
}

// LoadFile decodes path, converts it to sampleRate and builds a Session.
// It blocks for the whole decode and must not be called on the audio thread.
func LoadFile(path string, sampleRate int) (*Session, error) {
	pcm, err := Decode(path)
	if err != nil {
		return nil, err
	}
	pcm = Resample(pcm, sampleRate)
	s, err := NewSession(pcm)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return s, nil
}

// Frames returns the track length in frames.
func (s *Session) Frames() int { return s.frames }

// SampleRate returns the rate the arrays are stored at.
func (s *Session) SampleRate() int { return s.sampleRate }

// Cursor returns the session's playback cursor.
func (s *Session) Cursor() *Cursor { return s.cursor }

// Duration returns the total track length.
func (s *Session) Duration() time.Duration {
	return util.FramesToDuration(int64(s.frames), s.sampleRate)
}

// Elapsed returns the time at the cursor position.
func (s *Session) Elapsed() time.Duration {
	return util.FramesToDuration(int64(s.cursor.Position()), s.sampleRate)
}

// Stereo returns the interleaved stereo view. Callers must not modify it.
func (s *Session) Stereo() []float32 { return s.stereo }

// Mono returns the mono analysis view. Callers must not modify it.
func (s *Session) Mono() []float32 { return s.mono }
