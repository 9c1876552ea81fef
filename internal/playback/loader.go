package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/olivier-w/cdviz/internal/acquire"
	"github.com/olivier-w/cdviz/internal/player"
	"github.com/olivier-w/cdviz/internal/playlist"
	"github.com/rs/zerolog/log"
)

// Loader builds the session for one track. It may block (decoding, ripping)
// and is never called on the audio thread.
type Loader interface {
	Load(ctx context.Context, t playlist.Track) (*player.Session, error)
}

// TrackLoader decodes file tracks directly and acquires disc tracks through
// Disc first. Sessions are converted to SampleRate.
type TrackLoader struct {
	SampleRate int
	Disc       acquire.Ensurer
}

// Load implements Loader.
func (l *TrackLoader) Load(ctx context.Context, t playlist.Track) (*player.Session, error) {
	path := t.Path
	if t.Kind == playlist.Disc {
		if l.Disc == nil {
			return nil, errors.New("no disc source configured")
		}
		var err error
		path, err = l.Disc.EnsureAvailable(ctx, t.Number)
		if err != nil {
			return nil, err
		}
	}
	if path == "" {
		return nil, fmt.Errorf("track %d has no file", t.Number)
	}

	s, err := player.LoadFile(path, l.SampleRate)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("path", path).
		Int("rate", s.SampleRate()).
		Int("frames", s.Frames()).
		Dur("duration", s.Duration()).
		Msg("track loaded")
	return s, nil
}
