package player

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	blocks [][]float32
}

func (s *recordingSink) OnAudioBlock(mono []float32) {
	s.blocks = append(s.blocks, append([]float32(nil), mono...))
}

func TestBlockReaderDeliversWholeBlocks(t *testing.T) {
	gate := &readGate{open: true}
	p := NewProducer(4)
	p.SetSession(rampSession(t, 100))
	sink := &recordingSink{}
	r := newBlockReader(gate, p, sink, 4)

	// 3 bytes short of one block, then enough to span two more
	buf := make([]byte, 4*bytesPerFrame-3)
	if n, err := r.Read(buf); err != nil || n != len(buf) {
		t.Fatalf("Read = (%d, %v)", n, err)
	}
	if len(sink.blocks) != 1 {
		t.Fatalf("expected one analysed block, got %d", len(sink.blocks))
	}
	buf = make([]byte, 3+4*bytesPerFrame)
	if _, err := r.Read(buf); err != nil {
		t.Fatal(err)
	}
	if len(sink.blocks) != 2 {
		t.Fatalf("expected two analysed blocks, got %d", len(sink.blocks))
	}
	for _, b := range sink.blocks {
		if len(b) != 4 {
			t.Fatalf("expected 4-frame analysis blocks, got %d", len(b))
		}
	}

	// the second read ends exactly on the right channel of frame 8
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[len(buf)-4:])); got != -0.08 {
		t.Fatalf("expected last sample -0.08, got %g", got)
	}
}

func TestBlockReaderEncodesFloat32LE(t *testing.T) {
	gate := &readGate{open: true}
	p := NewProducer(2)
	s, err := NewSession(&PCM{Samples: []float32{0.5, -0.25, 1, -1}, Channels: 2, SampleRate: 44100})
	if err != nil {
		t.Fatal(err)
	}
	p.SetSession(s)
	r := newBlockReader(gate, p, nil, 2)

	buf := make([]byte, 2*bytesPerFrame)
	if _, err := r.Read(buf); err != nil {
		t.Fatal(err)
	}
	want := []float32{0.5, -0.25, 1, -1}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])); got != w {
			t.Fatalf("sample %d = %g, want %g", i, got, w)
		}
	}
}

func TestBlockReaderSilentWithoutSession(t *testing.T) {
	gate := &readGate{open: true}
	r := newBlockReader(gate, NewProducer(8), nil, 8)
	buf := make([]byte, 100)
	for i := range buf {
		buf[i] = 0xff
	}
	if _, err := r.Read(buf); err != nil {
		t.Fatal(err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want silence", i, b)
		}
	}
}

func TestBlockReaderClosedGateLeavesProducerAlone(t *testing.T) {
	p := NewProducer(4)
	s := rampSession(t, 100)
	p.SetSession(s)
	sink := &recordingSink{}
	r := newBlockReader(&readGate{}, p, sink, 4)

	buf := make([]byte, 4*bytesPerFrame)
	for i := range buf {
		buf[i] = 0xff
	}
	if n, err := r.Read(buf); err != nil || n != len(buf) {
		t.Fatalf("Read = (%d, %v)", n, err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want silence", i, b)
		}
	}
	if s.Cursor().Position() != 0 {
		t.Fatalf("cursor moved to %d behind a closed gate", s.Cursor().Position())
	}
	if len(sink.blocks) != 0 {
		t.Fatal("expected no analysis behind a closed gate")
	}
}

// gatedSink holds the audio thread inside OnAudioBlock until released.
type gatedSink struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (s *gatedSink) OnAudioBlock([]float32) {
	s.calls++
	if s.calls == 1 {
		close(s.entered)
		<-s.release
	}
}

func TestClosingGateWaitsForInFlightRead(t *testing.T) {
	p := NewProducer(4)
	s := rampSession(t, 100)
	p.SetSession(s)
	sink := &gatedSink{entered: make(chan struct{}), release: make(chan struct{})}
	gate := &readGate{open: true}
	r := newBlockReader(gate, p, sink, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Read(make([]byte, 4*bytesPerFrame))
	}()
	<-sink.entered

	closed := make(chan struct{})
	go func() {
		gate.set(false)
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("gate closed while a Read was still producing")
	case <-time.After(50 * time.Millisecond):
	}

	close(sink.release)
	<-closed
	wg.Wait()

	// the stop path resets here; nothing may advance afterwards
	s.Cursor().Reset()
	r.Read(make([]byte, 8*bytesPerFrame))
	if s.Cursor().Position() != 0 {
		t.Fatalf("cursor = %d after the gate closed, want 0", s.Cursor().Position())
	}
	if sink.calls != 1 {
		t.Fatalf("expected no analysis after the gate closed, got %d blocks", sink.calls)
	}
}
