package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olivier-w/cdviz/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging points the global logger at cfg.LogFile, since the terminal
// belongs to the TUI. The returned func closes the file.
func setupLogging(cfg config.Config) (func(), error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.New(f).With().Timestamp().Logger()

	log.Info().
		Int("rate", cfg.SampleRate).
		Int("block", cfg.BlockSize).
		Int("bars", cfg.Bars).
		Bool("cd", cfg.CD).
		Msg("cdviz starting")

	return func() {
		log.Info().Msg("cdviz exiting")
		f.Close()
	}, nil
}
