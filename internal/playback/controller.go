package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olivier-w/cdviz/internal/player"
	"github.com/olivier-w/cdviz/internal/playlist"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyPlaylist is returned by track changes on an empty playlist.
	ErrEmptyPlaylist = errors.New("playlist is empty")
	// ErrNotActive is returned by seeks while stopped.
	ErrNotActive = errors.New("nothing is playing")
)

const (
	prefetchAhead = 2
	stopTimeout   = 3 * time.Second
)

// Output is the audio stream the controller drives. *player.Device
// implements it.
type Output interface {
	Start() error
	Pause()
	Flush()
	Close() error
}

// Analyzer is the visualization state reset on stop. *visualizer.Visualizer
// implements it.
type Analyzer interface {
	Reset()
	CurrentDisplayHeights() []float64
}

// Prefetcher acquires upcoming tracks in the background.
// *acquire.Prefetcher implements it.
type Prefetcher interface {
	Schedule(tracks ...int)
	Stop(timeout time.Duration) bool
}

// Cleaner removes temporary files at the end of a session. *acquire.Cache
// implements it.
type Cleaner interface {
	Cleanup() (deleted, failed int)
}

// Options wires a Controller. Prefetch and Cleanup are optional.
type Options struct {
	Playlist *playlist.Playlist
	Loader   Loader
	Producer *player.Producer
	Output   Output
	Analyzer Analyzer
	Prefetch Prefetcher
	Cleanup  Cleaner
}

// Frame is a snapshot for the render tick.
type Frame struct {
	State    State
	Index    int
	Track    playlist.Track
	Elapsed  time.Duration
	Total    time.Duration
	Fraction float64
	Volume   float64
	Err      error
}

// Controller sequences track loads and owns the play/pause/stop state
// machine. Operations are serialized and may block while a track loads;
// Frame and Bars never block on them.
type Controller struct {
	list     *playlist.Playlist
	loader   Loader
	producer *player.Producer
	out      Output
	analyzer Analyzer
	prefetch Prefetcher
	cleanup  Cleaner

	ctx    context.Context
	cancel context.CancelFunc

	opMu   sync.Mutex
	state  atomic.Int32
	index  atomic.Int64
	closed bool

	errMu sync.Mutex
	err   error
}

// New creates a Controller in the Stopped state on the playlist's current
// track. Nothing is loaded until the first play or track change.
func New(opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		list:     opts.Playlist,
		loader:   opts.Loader,
		producer: opts.Producer,
		out:      opts.Output,
		analyzer: opts.Analyzer,
		prefetch: opts.Prefetch,
		cleanup:  opts.Cleanup,
		ctx:      ctx,
		cancel:   cancel,
	}
	c.index.Store(int64(c.list.CurrentIndex()))
	return c
}

// State returns the transport state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Err returns the last load or device error, cleared by the next successful
// load or start.
func (c *Controller) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Controller) setErr(err error) {
	c.errMu.Lock()
	c.err = err
	c.errMu.Unlock()
}

func (c *Controller) setState(s State) {
	if old := State(c.state.Swap(int32(s))); old != s {
		log.Debug().Str("from", old.String()).Str("to", s.String()).Msg("playback state")
	}
}

// Play starts or resumes playback. From Stopped with nothing loaded, the
// current track is loaded first.
func (c *Controller) Play() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.playLocked()
}

func (c *Controller) playLocked() error {
	if c.closed {
		return nil
	}
	switch c.State() {
	case Playing:
		return nil
	case Stopped:
		if c.producer.Session() == nil {
			if err := c.loadCurrentLocked(); err != nil {
				return err
			}
		}
	}
	if err := c.out.Start(); err != nil {
		c.setErr(err)
		c.setState(Stopped)
		log.Error().Err(err).Msg("could not start output")
		return err
	}
	c.setErr(nil)
	c.setState(Playing)
	return nil
}

// Pause suspends playback, keeping the position. It does nothing unless
// playing.
func (c *Controller) Pause() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.State() != Playing {
		return
	}
	c.out.Pause()
	c.setState(Paused)
}

// TogglePlay pauses when playing and plays otherwise.
func (c *Controller) TogglePlay() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.State() == Playing {
		c.out.Pause()
		c.setState(Paused)
		return nil
	}
	return c.playLocked()
}

// Stop suspends the stream, rewinds the track and clears the bars at once.
func (c *Controller) Stop() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	c.out.Pause()
	c.out.Flush()
	if s := c.producer.Session(); s != nil {
		s.Cursor().Reset()
	}
	c.analyzer.Reset()
	c.setState(Stopped)
}

// Next moves to the following track, wrapping to the first.
func (c *Controller) Next() error {
	return c.switchTrack(func() (int, error) {
		return c.list.Next(), nil
	})
}

// Prev moves to the preceding track, wrapping to the last.
func (c *Controller) Prev() error {
	return c.switchTrack(func() (int, error) {
		return c.list.Previous(), nil
	})
}

// Select moves to the track at index i.
func (c *Controller) Select(i int) error {
	return c.switchTrack(func() (int, error) {
		if err := c.list.Select(i); err != nil {
			return 0, err
		}
		return i, nil
	})
}

// switchTrack stops, moves, loads, and resumes only if playback was running
// before the switch.
func (c *Controller) switchTrack(move func() (int, error)) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.closed {
		return nil
	}
	if c.list.Len() == 0 {
		return ErrEmptyPlaylist
	}

	was := c.State()
	idx, err := move()
	if err != nil {
		return err
	}
	c.stopLocked()
	c.index.Store(int64(idx))

	if err := c.loadCurrentLocked(); err != nil {
		return err
	}
	if was == Playing {
		return c.playLocked()
	}
	return nil
}

// loadCurrentLocked replaces the session with the current track's. On
// failure nothing stays loaded and the error is recorded.
func (c *Controller) loadCurrentLocked() error {
	t, ok := c.list.Current()
	if !ok {
		return ErrEmptyPlaylist
	}
	c.producer.SetSession(nil)

	s, err := c.loader.Load(c.ctx, t)
	if err != nil {
		err = fmt.Errorf("loading %s: %w", t.DisplayName(), err)
		c.setErr(err)
		c.setState(Stopped)
		log.Warn().Err(err).Int("track", t.Number).Msg("track load failed")
		return err
	}
	c.producer.SetSession(s)
	c.setErr(nil)
	c.schedulePrefetch()
	return nil
}

func (c *Controller) schedulePrefetch() {
	if c.prefetch == nil {
		return
	}
	var numbers []int
	for _, t := range c.list.Upcoming(prefetchAhead) {
		if t.Kind == playlist.Disc {
			numbers = append(numbers, t.Number)
		}
	}
	if len(numbers) > 0 {
		c.prefetch.Schedule(numbers...)
	}
}

// Seek moves to fraction (0..1) of the track. Only legal while playing or
// paused; the state does not change.
func (c *Controller) Seek(fraction float64) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	s := c.producer.Session()
	if !c.State().IsActive() || s == nil {
		return ErrNotActive
	}
	s.Cursor().Seek(fraction)
	c.out.Flush()
	return nil
}

// SeekBy moves the position by d, clamped to the track.
func (c *Controller) SeekBy(d time.Duration) error {
	s := c.producer.Session()
	if s == nil || s.Duration() <= 0 {
		return ErrNotActive
	}
	target := s.Elapsed() + d
	return c.Seek(float64(target) / float64(s.Duration()))
}

// SetVolume sets the output volume, clamped to [0, 1].
func (c *Controller) SetVolume(v float64) {
	c.producer.SetVolume(v)
}

// Volume returns the output volume.
func (c *Controller) Volume() float64 {
	return c.producer.Volume()
}

// Playlist returns the controller's playlist. Callers must treat it as
// read-only.
func (c *Controller) Playlist() *playlist.Playlist {
	return c.list
}

// Bars advances the bar smoother one render frame and returns the heights.
func (c *Controller) Bars() []float64 {
	return c.analyzer.CurrentDisplayHeights()
}

// Frame returns the current playback snapshot.
func (c *Controller) Frame() Frame {
	f := Frame{
		State:  c.State(),
		Index:  int(c.index.Load()),
		Volume: c.producer.Volume(),
		Err:    c.Err(),
	}
	if t, ok := c.list.Track(f.Index); ok {
		f.Track = t
		f.Total = t.Length
	}
	if s := c.producer.Session(); s != nil {
		f.Total = s.Duration()
		f.Elapsed = s.Elapsed()
		f.Fraction = s.Cursor().Fraction()
	}
	return f
}

// Close stops playback, closes the output, cancels background acquisition
// and removes temporary files. It is safe to call more than once.
func (c *Controller) Close() error {
	// Cancel first so an in-flight load or rip releases opMu.
	c.cancel()
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.stopLocked()
	err := c.out.Close()
	if c.prefetch != nil {
		c.prefetch.Stop(stopTimeout)
	}
	if c.cleanup != nil {
		c.cleanup.Cleanup()
	}
	c.producer.SetSession(nil)
	return err
}
