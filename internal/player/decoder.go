package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// PCM is a fully decoded track: interleaved float32 samples in [-1, 1].
type PCM struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames.
func (p *PCM) Frames() int {
	if p == nil || p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Decode reads the whole file at path into memory. The format is chosen by
// extension. Every failure is returned as a *DecodeError.
func Decode(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	var pcm *PCM
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		pcm, err = decodeMP3(f)
	case ".wav":
		pcm, err = decodeWAV(f)
	case ".flac":
		pcm, err = decodeFLAC(f)
	case ".ogg":
		pcm, err = decodeOGG(f)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if pcm.SampleRate <= 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("invalid sample rate %d", pcm.SampleRate)}
	}
	if pcm.Frames() == 0 {
		return nil, &DecodeError{Path: path, Err: ErrNoAudio}
	}
	return pcm, nil
}

// --- MP3 ---

// go-mp3 always produces 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (*PCM, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 frames: %w", err)
	}

	n := len(raw) / 2
	n -= n % 2 // whole stereo frames only
	samples := make([]float32, n)
	for i := range n {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}
	return &PCM{Samples: samples, Channels: 2, SampleRate: dec.SampleRate()}, nil
}

// --- WAV ---

func decodeWAV(r io.ReadSeeker) (*PCM, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: WAV audio format %d (only PCM)", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	return intBufferToPCM(buf, int(dec.BitDepth))
}

func intBufferToPCM(buf *audio.IntBuffer, fallbackDepth int) (*PCM, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("WAV buffer has no format")
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = fallbackDepth
	}
	if depth != 8 && depth != 16 && depth != 24 && depth != 32 {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, depth)
	}

	channels := buf.Format.NumChannels
	n := len(buf.Data) - len(buf.Data)%channels
	samples := make([]float32, n)
	scale := float32(int64(1) << (depth - 1))
	for i := range n {
		v := buf.Data[i]
		if depth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		samples[i] = clampSample(float32(v) / scale)
	}
	return &PCM{Samples: samples, Channels: channels, SampleRate: buf.Format.SampleRate}, nil
}

// --- FLAC ---

func decodeFLAC(r io.Reader) (*PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)
	if channels <= 0 || bps <= 0 || bps > 32 {
		return nil, fmt.Errorf("%w: FLAC with %d channels at %d bits", ErrUnsupportedFormat, channels, bps)
	}
	scale := float32(int64(1) << (bps - 1))

	samples := make([]float32, 0, flacCapacity(info.NSamples, channels))
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading FLAC frame: %w", err)
		}
		if len(frame.Subframes) < channels {
			return nil, fmt.Errorf("reading FLAC frame: %d subframes for %d channels", len(frame.Subframes), channels)
		}
		nSamples := int(frame.Subframes[0].NSamples)
		for ch := range channels {
			if len(frame.Subframes[ch].Samples) < nSamples {
				return nil, fmt.Errorf("reading FLAC frame: short subframe %d", ch)
			}
		}
		for i := range nSamples {
			for ch := range channels {
				samples = append(samples, clampSample(float32(frame.Subframes[ch].Samples[i])/scale))
			}
		}
	}
	return &PCM{Samples: samples, Channels: channels, SampleRate: int(info.SampleRate)}, nil
}

// maxFLACPrealloc bounds the buffer sized from STREAMINFO, whose 36-bit
// sample count is untrusted. Longer streams grow by append.
const maxFLACPrealloc = 1 << 24

func flacCapacity(frames uint64, channels int) int {
	if channels <= 0 || frames > maxFLACPrealloc/uint64(channels) {
		return maxFLACPrealloc
	}
	return int(frames) * channels
}

// --- OGG Vorbis ---

func decodeOGG(r io.Reader) (*PCM, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	for i, s := range data {
		data[i] = clampSample(s)
	}
	return &PCM{Samples: data, Channels: format.Channels, SampleRate: format.SampleRate}, nil
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
