package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	channelCount   = 2
	bytesPerSample = 4 // float32
	bytesPerFrame  = channelCount * bytesPerSample
)

// BlockSink receives the mono analysis block of every produced block. It is
// called on the audio thread and must not block.
type BlockSink interface {
	OnAudioBlock(mono []float32)
}

var (
	globalOtoCtx  *oto.Context
	globalOtoRate int
	otoOnce       sync.Once
	otoInitErr    error
)

// initOto creates the process-wide oto context. oto allows only one context
// per process, so later calls must ask for the same sample rate.
func initOto(sampleRate, blockSize int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatFloat32LE,
			BufferSize:   time.Duration(blockSize) * time.Second / time.Duration(sampleRate),
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			globalOtoRate = sampleRate
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if globalOtoRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz (requested %d Hz)", globalOtoRate, sampleRate)
	}
	return globalOtoCtx, nil
}

// readGate serializes the Reads of one Device. While it is closed Reads
// return silence without touching the Producer or the sink. Closing it waits
// for an in-flight Read, since oto calls Read outside its own player lock
// and a Read may still be running after oto's Pause returns.
type readGate struct {
	mu   sync.Mutex
	open bool
}

func (g *readGate) set(open bool) {
	g.mu.Lock()
	g.open = open
	g.mu.Unlock()
}

// blockReader adapts the Producer's pull contract to the io.Reader oto
// consumes. It always produces whole blocks and keeps the unread tail for
// the next Read, so every analysis window is exactly blockSize frames.
type blockReader struct {
	gate      *readGate // shared by every reader of one Device
	producer  *Producer
	sink      BlockSink
	blockSize int
	scratch   []byte
	pending   []byte
}

func newBlockReader(gate *readGate, producer *Producer, sink BlockSink, blockSize int) *blockReader {
	return &blockReader{
		gate:      gate,
		producer:  producer,
		sink:      sink,
		blockSize: blockSize,
		scratch:   make([]byte, blockSize*bytesPerFrame),
	}
}

// Read never fails: silence is produced when no track is loaded or the
// gate is closed.
func (r *blockReader) Read(p []byte) (int, error) {
	r.gate.mu.Lock()
	defer r.gate.mu.Unlock()
	if !r.gate.open {
		clear(p)
		return len(p), nil
	}

	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.fill()
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}

func (r *blockReader) fill() {
	stereo, mono := r.producer.ProduceBlock(r.blockSize)
	for i, v := range stereo {
		binary.LittleEndian.PutUint32(r.scratch[i*bytesPerSample:], math.Float32bits(v))
	}
	if r.sink != nil {
		r.sink.OnAudioBlock(mono)
	}
	r.pending = r.scratch[:len(stereo)*bytesPerSample]
}

// Device is the output stream. oto pulls blocks from the Producer on its own
// goroutine while the Device is started.
type Device struct {
	ctx       *oto.Context
	player    *oto.Player
	producer  *Producer
	sink      BlockSink
	blockSize int
	gate      readGate
	mu        sync.Mutex
	playing   bool
	closed    bool
}

// OpenDevice opens the output stream in the paused state. Failures are
// returned as *DeviceError.
func OpenDevice(sampleRate, blockSize int, producer *Producer, sink BlockSink) (*Device, error) {
	if sampleRate <= 0 || blockSize <= 0 {
		return nil, &DeviceError{Err: fmt.Errorf("invalid stream parameters: %d Hz, %d frames", sampleRate, blockSize)}
	}
	ctx, err := initOto(sampleRate, blockSize)
	if err != nil {
		return nil, &DeviceError{Err: err}
	}
	d := &Device{
		ctx:       ctx,
		producer:  producer,
		sink:      sink,
		blockSize: blockSize,
	}
	d.player = d.newPlayer()
	return d, nil
}

func (d *Device) newPlayer() *oto.Player {
	pl := d.ctx.NewPlayer(newBlockReader(&d.gate, d.producer, d.sink, d.blockSize))
	pl.SetBufferSize(d.blockSize * bytesPerFrame * 2)
	return pl
}

// Start begins (or resumes) pulling blocks.
func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &DeviceError{Err: errors.New("device closed")}
	}
	if err := d.player.Err(); err != nil {
		return &DeviceError{Err: err}
	}
	d.gate.set(true)
	d.player.Play()
	d.playing = true
	return nil
}

// Pause stops pulling blocks. Already buffered audio is kept. When Pause
// returns no Read is running and none will reach the Producer until Start.
func (d *Device) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.player.Pause()
	d.gate.set(false)
	d.playing = false
}

// Flush drops audio that was produced but not yet heard. The oto player is
// recreated to empty its buffer; the old one is paused and released to GC.
func (d *Device) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.player.Pause()
	d.gate.set(false)
	d.player = d.newPlayer()
	if d.playing {
		d.gate.set(true)
		d.player.Play()
	}
}

// Playing reports whether the stream is pulling blocks.
func (d *Device) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

// Close stops the stream. The shared oto context stays alive for the rest
// of the process.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.playing = false
	d.player.Pause()
	d.gate.set(false)
	if err := d.player.Err(); err != nil {
		return &DeviceError{Err: err}
	}
	return nil
}
