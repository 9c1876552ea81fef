package player

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, sampleRate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestDecodeWAV16Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, 44100, 2, []int{16384, -16384, 32767, -32768, 0, 0})

	pcm, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pcm.Channels != 2 || pcm.SampleRate != 44100 {
		t.Fatalf("unexpected format %d ch @ %d Hz", pcm.Channels, pcm.SampleRate)
	}
	if pcm.Frames() != 3 {
		t.Fatalf("expected 3 frames, got %d", pcm.Frames())
	}
	if pcm.Samples[0] != 0.5 || pcm.Samples[1] != -0.5 || pcm.Samples[3] != -1 {
		t.Fatalf("unexpected samples %v", pcm.Samples)
	}
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Decode(path)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T (%v)", err, err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "missing.wav"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestDecodeCorruptWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("RIFF not really"), 0o644); err != nil {
		t.Fatal(err)
	}
	var de *DecodeError
	if _, err := Decode(path); !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
}

func TestLoadFileResamplesToDeviceRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	data := make([]int, 22050)
	for i := range data {
		data[i] = (i % 100) * 100
	}
	writeTestWAV(t, path, 22050, 1, data)

	s, err := LoadFile(path, 44100)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.SampleRate() != 44100 {
		t.Fatalf("expected 44100 Hz session, got %d", s.SampleRate())
	}
	if d := s.Frames() - 44100; d < -441 || d > 441 {
		t.Fatalf("expected about 44100 frames after resampling, got %d", s.Frames())
	}
	if len(s.Stereo()) != s.Frames()*2 || len(s.Mono()) != s.Frames() {
		t.Fatal("stereo and mono views disagree on frame count")
	}
}

// writeFLACHeader writes a stream that has only a STREAMINFO block claiming
// frames samples of 16-bit stereo at 44100 Hz.
func writeFLACHeader(t *testing.T, path string, frames uint64) {
	t.Helper()
	b := []byte("fLaC")
	b = append(b, 0x80, 0x00, 0x00, 34) // last block, STREAMINFO, 34 bytes
	b = binary.BigEndian.AppendUint16(b, 4096)
	b = binary.BigEndian.AppendUint16(b, 4096)
	b = append(b, 0, 0, 0, 0, 0, 0) // frame sizes unknown
	packed := uint64(44100)<<44 | uint64(2-1)<<41 | uint64(16-1)<<36 | frames&(1<<36-1)
	b = binary.BigEndian.AppendUint64(b, packed)
	b = append(b, make([]byte, 16)...) // MD5
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeFLACWithHugeSampleCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forged.flac")
	writeFLACHeader(t, path, 1<<36-1)

	_, err := Decode(path)
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected *DecodeError wrapping ErrNoAudio, got %v", err)
	}
}

func TestFLACCapacity(t *testing.T) {
	tests := []struct {
		frames   uint64
		channels int
		want     int
	}{
		{1000, 2, 2000},
		{0, 2, 0},
		{1<<36 - 1, 2, maxFLACPrealloc},
		{maxFLACPrealloc / 2, 2, maxFLACPrealloc},
		{maxFLACPrealloc/2 + 1, 2, maxFLACPrealloc},
		{10, 0, maxFLACPrealloc},
	}
	for _, tt := range tests {
		if got := flacCapacity(tt.frames, tt.channels); got != tt.want {
			t.Errorf("flacCapacity(%d, %d) = %d, want %d", tt.frames, tt.channels, got, tt.want)
		}
	}
}
