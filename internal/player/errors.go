package player

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is wrapped by DecodeError for unknown extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNoAudio is wrapped by DecodeError when a file decodes to zero frames.
	ErrNoAudio = errors.New("no audio frames")
)

// DecodeError reports a track that could not be turned into samples.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DeviceError reports an unavailable or failed output device.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }
