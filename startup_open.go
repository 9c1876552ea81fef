package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/olivier-w/cdviz/internal/acquire"
	"github.com/olivier-w/cdviz/internal/config"
	"github.com/olivier-w/cdviz/internal/media"
	"github.com/olivier-w/cdviz/internal/playback"
	"github.com/olivier-w/cdviz/internal/player"
	"github.com/olivier-w/cdviz/internal/playlist"
	"github.com/olivier-w/cdviz/internal/ui"
	"github.com/olivier-w/cdviz/internal/visualizer"
	"github.com/rs/zerolog/log"
)

const tocTimeout = 30 * time.Second

// source is a resolved set of tracks to play.
type source struct {
	name   string
	tracks []playlist.Track
	start  int
}

// appSession owns everything opened for playback.
type appSession struct {
	ctrl  *playback.Controller
	model ui.Model
}

// sessionHolder hands the session opened inside the TUI back to main so it
// is closed after the program exits.
type sessionHolder struct {
	mu      sync.Mutex
	session *appSession
	closed  bool
}

// set records s for close. A session that arrives after close, because the
// user quit while it was opening, is closed at once and set reports false.
func (h *sessionHolder) set(s *appSession) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		closeSession(s)
		return false
	}
	h.session = s
	return true
}

func (h *sessionHolder) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if h.session != nil {
		closeSession(h.session)
	}
}

func closeSession(s *appSession) {
	if err := s.ctrl.Close(); err != nil {
		log.Warn().Err(err).Msg("closing playback")
	}
}

// resolveSource turns the command line into tracks: the disc in the drive,
// a folder, a playlist file, or a single file together with its folder.
func resolveSource(ctx context.Context, cfg config.Config, arg string) (source, error) {
	if cfg.CD {
		ctx, cancel := context.WithTimeout(ctx, tocTimeout)
		defer cancel()
		tracks, err := acquire.ReadTOC(ctx, cfg.TOCCommand, cfg.CDDevice)
		if err != nil {
			return source{}, err
		}
		return source{name: "Audio CD", tracks: tracks}, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return source{}, err
	}
	if info.IsDir() {
		files, err := media.ScanDir(arg)
		if err != nil {
			return source{}, err
		}
		if len(files) == 0 {
			return source{}, fmt.Errorf("no playable files in %s (supported: %s)", arg, media.SupportedExtsList())
		}
		return source{name: filepath.Base(filepath.Clean(arg)), tracks: fileTracks(files)}, nil
	}

	ext := strings.ToLower(filepath.Ext(arg))
	if media.IsPlaylistExt(ext) {
		entries, err := media.ParseLocalPlaylist(arg)
		if err != nil {
			return source{}, err
		}
		files := media.FilterPlayableLocalPaths(entries)
		if len(files) == 0 {
			return source{}, errors.New("playlist contains no playable entries")
		}
		return source{name: strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg)), tracks: fileTracks(files)}, nil
	}
	if !media.IsSupportedExt(ext) {
		return source{}, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return source{}, err
	}
	dir := filepath.Dir(abs)
	files, err := media.ScanDir(dir)
	if err != nil || len(files) == 0 {
		files = []string{abs}
	}
	src := source{name: filepath.Base(dir), tracks: fileTracks(files)}
	for i, f := range files {
		if f == abs {
			src.start = i
		}
	}
	return src, nil
}

func fileTracks(files []string) []playlist.Track {
	tracks := make([]playlist.Track, len(files))
	for i, f := range files {
		tracks[i] = playlist.Track{
			Number: i + 1,
			Title:  player.ReadMetadata(f).DisplayTitle(),
			Kind:   playlist.File,
			Path:   f,
		}
	}
	return tracks
}

// openSession resolves the source and wires the audio path, the controller
// and the TUI model. Nothing is decoded until the first play.
func openSession(ctx context.Context, cfg config.Config, arg string) (*appSession, error) {
	src, err := resolveSource(ctx, cfg, arg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", src.name).Int("tracks", len(src.tracks)).Msg("source resolved")

	list := playlist.New(src.tracks)
	if err := list.Select(src.start); err != nil {
		return nil, err
	}

	vis := visualizer.New(visualizer.Options{
		Bars:        cfg.Bars,
		BoostSlope:  cfg.BoostSlope,
		DisplayGain: cfg.DisplayGain,
		Smoothing:   cfg.Smoothing,
		MaxHeight:   cfg.MaxHeight,
		BlockSize:   cfg.BlockSize,
	})
	producer := player.NewProducer(cfg.BlockSize)
	producer.SetVolume(cfg.Volume)

	device, err := player.OpenDevice(cfg.SampleRate, cfg.BlockSize, producer, vis)
	if err != nil {
		return nil, err
	}
	log.Info().Int("rate", cfg.SampleRate).Int("block", cfg.BlockSize).Msg("audio device opened")

	loader := &playback.TrackLoader{SampleRate: cfg.SampleRate}
	opts := playback.Options{
		Playlist: list,
		Loader:   loader,
		Producer: producer,
		Output:   device,
		Analyzer: vis,
	}
	var prefetched <-chan acquire.Result
	if cfg.CD {
		ripper := &acquire.CommandRipper{
			Command: cfg.RipCommand,
			Device:  cfg.CDDevice,
			Timeout: cfg.RipTimeout,
		}
		cache := acquire.NewCache(ripper, cfg.RipDir)
		loader.Disc = cache
		opts.Cleanup = cache
		if cfg.Prefetch {
			pf := acquire.NewPrefetcher(cache)
			opts.Prefetch = pf
			prefetched = pf.Results()
		}
	}

	ctrl := playback.New(opts)
	model := ui.New(ctrl, ui.Options{
		Source:       src.name,
		Tracks:       list.Tracks(),
		BarTick:      cfg.BarTick,
		ProgressTick: cfg.ProgressTick,
		MaxHeight:    cfg.MaxHeight,
		Prefetched:   prefetched,
	})
	return &appSession{ctrl: ctrl, model: model}, nil
}
