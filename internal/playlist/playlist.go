package playlist

import (
	"errors"
	"fmt"
	"time"
)

// ErrIndexOutOfRange is returned when selecting a track that does not exist.
var ErrIndexOutOfRange = errors.New("track index out of range")

// Kind identifies where a track's audio comes from.
type Kind int

const (
	// File tracks are decoded directly from Path.
	File Kind = iota
	// Disc tracks must be ripped before they can be decoded.
	Disc
)

// Track describes a single playlist entry. Tracks are never mutated after
// the playlist is built; ripping a disc track produces a file without
// changing its descriptor.
type Track struct {
	Number int
	Title  string
	Length time.Duration // zero when unknown until decoded
	Kind   Kind
	Path   string // File tracks only
	Offset int    // Disc tracks: start sector in the table of contents
}

// DisplayName returns "NN. Title" as shown in the track list.
func (t Track) DisplayName() string {
	return fmt.Sprintf("%02d. %s", t.Number, t.Title)
}

// Playlist is an ordered, immutable list of tracks plus a current index.
// It is not safe for concurrent use; the playback controller serializes access.
type Playlist struct {
	tracks  []Track
	current int
}

// New creates a Playlist from the given tracks, positioned on the first one.
func New(tracks []Track) *Playlist {
	cp := make([]Track, len(tracks))
	copy(cp, tracks)
	return &Playlist{tracks: cp}
}

// Len returns the total number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// CurrentIndex returns the zero-based index of the current track.
func (p *Playlist) CurrentIndex() int {
	return p.current
}

// Current returns the current track, or false if the playlist is empty.
func (p *Playlist) Current() (Track, bool) {
	return p.Track(p.current)
}

// Track returns the track at index i.
func (p *Playlist) Track(i int) (Track, bool) {
	if i < 0 || i >= len(p.tracks) {
		return Track{}, false
	}
	return p.tracks[i], true
}

// Tracks returns a copy of every track in order.
func (p *Playlist) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// Next moves to the following track, wrapping to the first after the last.
// It returns the new index, or -1 for an empty playlist.
func (p *Playlist) Next() int {
	if len(p.tracks) == 0 {
		return -1
	}
	p.current = (p.current + 1) % len(p.tracks)
	return p.current
}

// Previous moves to the preceding track, wrapping to the last before the first.
// It returns the new index, or -1 for an empty playlist.
func (p *Playlist) Previous() int {
	if len(p.tracks) == 0 {
		return -1
	}
	p.current = (p.current - 1 + len(p.tracks)) % len(p.tracks)
	return p.current
}

// Select sets the current track index directly.
func (p *Playlist) Select(i int) error {
	if i < 0 || i >= len(p.tracks) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(p.tracks))
	}
	p.current = i
	return nil
}

// Upcoming returns up to n tracks following the current one in playback
// order, wrapping around but never including the current track.
func (p *Playlist) Upcoming(n int) []Track {
	total := len(p.tracks)
	if total <= 1 || n <= 0 {
		return nil
	}
	if n > total-1 {
		n = total - 1
	}
	out := make([]Track, n)
	for k := range n {
		out[k] = p.tracks[(p.current+1+k)%total]
	}
	return out
}
