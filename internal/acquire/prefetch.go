package acquire

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Ensurer makes a track available locally. *Cache implements it.
type Ensurer interface {
	EnsureAvailable(ctx context.Context, track int) (string, error)
}

// Result is the outcome of one background acquisition. Ownership of Path
// stays with the Cache that produced it.
type Result struct {
	Track int
	Path  string
	Err   error
}

// Prefetcher acquires upcoming tracks on a single background goroutine.
// Scheduling replaces the pending queue; the rip in flight keeps running
// until it finishes or the prefetcher is stopped. Tracks that failed once
// are not retried.
type Prefetcher struct {
	ens    Ensurer
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queue  []int
	failed map[int]bool

	wake    chan struct{}
	results chan Result
	done    chan struct{}
}

// NewPrefetcher starts the background worker.
func NewPrefetcher(ens Ensurer) *Prefetcher {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Prefetcher{
		ens:     ens,
		ctx:     ctx,
		cancel:  cancel,
		failed:  make(map[int]bool),
		wake:    make(chan struct{}, 1),
		results: make(chan Result, 16),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Schedule replaces the pending queue with tracks, in order.
func (p *Prefetcher) Schedule(tracks ...int) {
	if p.ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	p.queue = p.queue[:0]
	for _, t := range tracks {
		if !p.failed[t] {
			p.queue = append(p.queue, t)
		}
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Results delivers finished acquisitions. Results are dropped when nobody
// drains the channel.
func (p *Prefetcher) Results() <-chan Result {
	return p.results
}

// Stop cancels the in-flight acquisition and waits up to timeout for the
// worker to exit. It reports whether the worker exited in time.
func (p *Prefetcher) Stop(timeout time.Duration) bool {
	p.cancel()
	select {
	case <-p.done:
		return true
	case <-time.After(timeout):
		log.Warn().Dur("timeout", timeout).Msg("prefetch worker did not stop in time")
		return false
	}
}

func (p *Prefetcher) next() (int, bool) {
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			t := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()
			return t, true
		}
		p.mu.Unlock()

		select {
		case <-p.ctx.Done():
			return 0, false
		case <-p.wake:
		}
	}
}

func (p *Prefetcher) run() {
	defer close(p.done)
	for {
		track, ok := p.next()
		if !ok {
			return
		}
		log.Debug().Int("track", track).Msg("prefetching track")
		path, err := p.ens.EnsureAvailable(p.ctx, track)
		if p.ctx.Err() != nil {
			return
		}
		if err != nil {
			p.mu.Lock()
			p.failed[track] = true
			p.mu.Unlock()
			log.Warn().Err(err).Int("track", track).Msg("prefetch failed")
		}
		select {
		case p.results <- Result{Track: track, Path: path, Err: err}:
		default:
		}
	}
}
