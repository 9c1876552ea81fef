package player

import "github.com/gopxl/beep/v2"

const resampleQuality = 4

// pcmStreamer exposes a PCM buffer as a beep.Streamer. Mono input is
// duplicated to both channels.
type pcmStreamer struct {
	pcm *PCM
	pos int
}

func (s *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := s.pcm.Frames()
	if s.pos >= frames {
		return 0, false
	}
	ch := s.pcm.Channels
	n := 0
	for n < len(samples) && s.pos < frames {
		base := s.pos * ch
		l := float64(s.pcm.Samples[base])
		r := l
		if ch > 1 {
			r = float64(s.pcm.Samples[base+1])
		}
		samples[n] = [2]float64{l, r}
		n++
		s.pos++
	}
	return n, true
}

func (s *pcmStreamer) Err() error { return nil }

// Resample converts pcm to the given sample rate. It returns pcm unchanged
// when the rates already match. Converted output is always stereo.
func Resample(pcm *PCM, rate int) *PCM {
	if pcm == nil || rate <= 0 || pcm.SampleRate <= 0 || pcm.SampleRate == rate || pcm.Frames() == 0 {
		return pcm
	}

	expected := int(int64(pcm.Frames()) * int64(rate) / int64(pcm.SampleRate))
	out := make([]float32, 0, (expected+1)*2)

	res := beep.Resample(resampleQuality, beep.SampleRate(pcm.SampleRate), beep.SampleRate(rate), &pcmStreamer{pcm: pcm})
	buf := make([][2]float64, 512)
	for {
		n, ok := res.Stream(buf)
		for i := range n {
			out = append(out, clampSample(float32(buf[i][0])), clampSample(float32(buf[i][1])))
		}
		if !ok {
			break
		}
	}
	return &PCM{Samples: out, Channels: 2, SampleRate: rate}
}
