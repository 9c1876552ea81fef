package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all runtime configuration. Defaults come from Default,
// environment variables override them and command-line flags win last.
type Config struct {
	// Output device
	SampleRate int
	BlockSize  int // frames per device callback and per analysis window
	Volume     float64

	// Visualization
	Bars         int
	BoostSlope   float64 // per-bar gain slope of the spectrum mapper
	DisplayGain  float64 // smoother input gain, separate from BoostSlope
	Smoothing    float64 // retention of the previous displayed frame, [0,1)
	MaxHeight    float64
	BarTick      time.Duration
	ProgressTick time.Duration

	// Audio CD
	CD         bool
	CDDevice   string
	RipCommand string
	TOCCommand string
	RipDir     string
	RipTimeout time.Duration
	Prefetch   bool

	// Logging
	LogFile string
	Debug   bool
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		SampleRate:   44100,
		BlockSize:    1024,
		Volume:       0.5,
		Bars:         20,
		BoostSlope:   15,
		DisplayGain:  2.5,
		Smoothing:    0.7,
		MaxHeight:    480,
		BarTick:      50 * time.Millisecond,
		ProgressTick: 100 * time.Millisecond,
		CDDevice:     "/dev/cdrom",
		RipCommand:   "cdparanoia",
		TOCCommand:   "cdparanoia",
		RipDir:       os.TempDir(),
		RipTimeout:   120 * time.Second,
		Prefetch:     true,
		LogFile:      filepath.Join(os.TempDir(), "cdviz.log"),
	}
}

// Load returns Default overridden by CDVIZ_* environment variables.
func Load() Config {
	c := Default()
	c.SampleRate = envInt("CDVIZ_SAMPLE_RATE", c.SampleRate)
	c.BlockSize = envInt("CDVIZ_BLOCK_SIZE", c.BlockSize)
	c.Volume = envFloat("CDVIZ_VOLUME", c.Volume)
	c.Bars = envInt("CDVIZ_BARS", c.Bars)
	c.BoostSlope = envFloat("CDVIZ_BOOST_SLOPE", c.BoostSlope)
	c.DisplayGain = envFloat("CDVIZ_DISPLAY_GAIN", c.DisplayGain)
	c.Smoothing = envFloat("CDVIZ_SMOOTHING", c.Smoothing)
	c.MaxHeight = envFloat("CDVIZ_MAX_HEIGHT", c.MaxHeight)
	c.BarTick = envDuration("CDVIZ_BAR_TICK", c.BarTick)
	c.ProgressTick = envDuration("CDVIZ_PROGRESS_TICK", c.ProgressTick)
	c.CDDevice = envStr("CDVIZ_CD_DEVICE", c.CDDevice)
	c.RipCommand = envStr("CDVIZ_RIP_COMMAND", c.RipCommand)
	c.TOCCommand = envStr("CDVIZ_TOC_COMMAND", c.TOCCommand)
	c.RipDir = envStr("CDVIZ_RIP_DIR", c.RipDir)
	c.RipTimeout = envDuration("CDVIZ_RIP_TIMEOUT", c.RipTimeout)
	c.Prefetch = envBool("CDVIZ_PREFETCH", c.Prefetch)
	c.LogFile = envStr("CDVIZ_LOG_FILE", c.LogFile)
	c.Debug = envBool("CDVIZ_DEBUG", c.Debug)
	return c
}

// BindFlags registers flags on fs that write into c. Current values of c
// are used as flag defaults.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.SampleRate, "sample-rate", c.SampleRate, "output sample rate in Hz")
	fs.IntVar(&c.BlockSize, "block-size", c.BlockSize, "frames per audio block")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "initial volume (0..1)")
	fs.IntVar(&c.Bars, "bars", c.Bars, "number of spectrum bars")
	fs.Float64Var(&c.BoostSlope, "boost", c.BoostSlope, "per-bar high frequency boost slope")
	fs.Float64Var(&c.DisplayGain, "gain", c.DisplayGain, "display gain applied before smoothing")
	fs.Float64Var(&c.Smoothing, "smoothing", c.Smoothing, "bar smoothing factor [0,1)")
	fs.Float64Var(&c.MaxHeight, "max-height", c.MaxHeight, "bar height ceiling")
	fs.DurationVar(&c.BarTick, "bar-tick", c.BarTick, "bar render period")
	fs.DurationVar(&c.ProgressTick, "progress-tick", c.ProgressTick, "progress render period")
	fs.BoolVar(&c.CD, "cd", c.CD, "play the audio CD in the drive")
	fs.StringVar(&c.CDDevice, "device", c.CDDevice, "CD device path")
	fs.StringVar(&c.RipCommand, "rip-command", c.RipCommand, "ripper executable")
	fs.StringVar(&c.TOCCommand, "toc-command", c.TOCCommand, "table of contents executable")
	fs.StringVar(&c.RipDir, "rip-dir", c.RipDir, "directory for ripped tracks")
	fs.DurationVar(&c.RipTimeout, "rip-timeout", c.RipTimeout, "per-track rip timeout")
	fs.BoolVar(&c.Prefetch, "prefetch", c.Prefetch, "rip upcoming tracks in the background")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file path")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
}

// Validate reports every invalid setting joined into one error.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", c.SampleRate))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block size must be positive, got %d", c.BlockSize))
	}
	if c.Bars <= 0 {
		errs = append(errs, fmt.Errorf("bar count must be positive, got %d", c.Bars))
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("smoothing must be in [0,1), got %g", c.Smoothing))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be in [0,1], got %g", c.Volume))
	}
	if c.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("max height must be positive, got %g", c.MaxHeight))
	}
	if c.BarTick <= 0 || c.ProgressTick <= 0 {
		errs = append(errs, errors.New("render ticks must be positive"))
	}
	if c.RipTimeout <= 0 {
		errs = append(errs, fmt.Errorf("rip timeout must be positive, got %v", c.RipTimeout))
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
