package acquire

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubEnsurer struct {
	fail  map[int]bool
	block bool
}

func (s *stubEnsurer) EnsureAvailable(ctx context.Context, track int) (string, error) {
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.fail[track] {
		return "", &Error{Track: track, Kind: KindFailed, Err: errors.New("scratched")}
	}
	return fmt.Sprintf("track_%02d.wav", track), nil
}

func nextResult(t *testing.T, p *Prefetcher) Result {
	t.Helper()
	select {
	case r := <-p.Results():
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a prefetch result")
		return Result{}
	}
}

func TestPrefetcherRunsInOrder(t *testing.T) {
	p := NewPrefetcher(&stubEnsurer{})
	defer p.Stop(time.Second)

	p.Schedule(2, 3)
	for _, want := range []int{2, 3} {
		r := nextResult(t, p)
		if r.Track != want || r.Err != nil || r.Path != fmt.Sprintf("track_%02d.wav", want) {
			t.Fatalf("unexpected result %+v, want track %d", r, want)
		}
	}
}

func TestPrefetcherDoesNotRetryFailures(t *testing.T) {
	p := NewPrefetcher(&stubEnsurer{fail: map[int]bool{4: true}})
	defer p.Stop(time.Second)

	p.Schedule(4)
	if r := nextResult(t, p); r.Track != 4 || r.Err == nil {
		t.Fatalf("expected failure for track 4, got %+v", r)
	}
	p.Schedule(4, 5)
	if r := nextResult(t, p); r.Track != 5 {
		t.Fatalf("expected track 4 to be skipped, got %+v", r)
	}
}

func TestPrefetcherStopCancelsInFlight(t *testing.T) {
	p := NewPrefetcher(&stubEnsurer{block: true})
	p.Schedule(1)
	time.Sleep(20 * time.Millisecond)
	if !p.Stop(2 * time.Second) {
		t.Fatal("expected the worker to exit after cancellation")
	}
	p.Schedule(2) // no-op after stop
}
