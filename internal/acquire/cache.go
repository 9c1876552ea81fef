package acquire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const partSuffix = ".part"

// Cache maps disc tracks to ripped WAV files in one directory. Every file it
// hands out or creates is registered so Cleanup can remove it at session end.
type Cache struct {
	ripper Ripper
	dir    string
	group  singleflight.Group

	mu    sync.Mutex
	files []string
	known map[string]bool
}

// NewCache creates a cache that rips into dir.
func NewCache(ripper Ripper, dir string) *Cache {
	return &Cache{
		ripper: ripper,
		dir:    dir,
		known:  make(map[string]bool),
	}
}

// Path returns where track is (or will be) ripped to.
func (c *Cache) Path(track int) string {
	return filepath.Join(c.dir, fmt.Sprintf("track_%02d.wav", track))
}

// EnsureAvailable returns the path of a decodable file for track, ripping it
// first when needed. A non-empty file already in place is a cache hit.
// Concurrent calls for the same track share a single rip.
func (c *Cache) EnsureAvailable(ctx context.Context, track int) (string, error) {
	if track < 1 {
		return "", &Error{Track: track, Kind: KindNotFound, Err: errors.New("no such track")}
	}
	path := c.Path(track)
	if fileReady(path) {
		c.register(path)
		log.Debug().Int("track", track).Str("path", path).Msg("rip cache hit")
		return path, nil
	}

	for {
		_, err, shared := c.group.Do(strconv.Itoa(track), func() (any, error) {
			return nil, c.rip(ctx, track, path)
		})
		// a shared rip cancelled by its owner does not fail this caller
		if err != nil && shared && errors.Is(err, context.Canceled) && ctx.Err() == nil {
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}
}

func (c *Cache) rip(ctx context.Context, track int, path string) error {
	if fileReady(path) {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return &Error{Track: track, Kind: KindFailed, Err: err}
	}
	c.register(path)

	// Rip under a temporary name so the cache-hit check in EnsureAvailable
	// only ever sees finished files.
	part := path + partSuffix
	start := time.Now()
	log.Info().Int("track", track).Str("path", path).Msg("ripping track")
	if err := c.ripper.Rip(ctx, track, part); err != nil {
		removePartial(part)
		var ae *Error
		if !errors.As(err, &ae) {
			err = &Error{Track: track, Kind: KindFailed, Err: err}
		}
		log.Warn().Err(err).Int("track", track).Dur("after", time.Since(start)).Msg("rip failed")
		return err
	}
	if err := os.Rename(part, path); err != nil {
		removePartial(part)
		err = &Error{Track: track, Kind: KindFailed, Err: err}
		log.Warn().Err(err).Int("track", track).Msg("rip failed")
		return err
	}
	log.Info().Int("track", track).Dur("took", time.Since(start)).Msg("track ripped")
	return nil
}

func (c *Cache) register(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.known[path] {
		c.known[path] = true
		c.files = append(c.files, path)
	}
}

// Files returns the registered files in registration order.
func (c *Cache) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.files...)
}

// Cleanup deletes every registered file and forgets them. Files already gone
// are not counted. Failures are logged and counted, never returned.
func (c *Cache) Cleanup() (deleted, failed int) {
	c.mu.Lock()
	files := c.files
	c.files = nil
	c.known = make(map[string]bool)
	c.mu.Unlock()

	log.Debug().Int("files", len(files)).Msg("cleaning up ripped tracks")
	for _, path := range files {
		err := os.Remove(path)
		switch {
		case err == nil:
			deleted++
			log.Debug().Str("path", path).Msg("deleted ripped track")
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("ripped track already gone")
		default:
			failed++
			log.Warn().Err(err).Str("path", path).Msg("could not delete ripped track")
		}
	}
	log.Info().Int("deleted", deleted).Int("failed", failed).Msg("rip cleanup complete")
	return deleted, failed
}
