package acquire

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a track could not be acquired.
type Kind int

const (
	KindFailed Kind = iota
	KindNotFound
	KindDeviceBusy
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindDeviceBusy:
		return "device busy"
	case KindTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrFailed     = errors.New("acquisition failed")
	ErrNotFound   = errors.New("not found")
	ErrDeviceBusy = errors.New("device busy")
	ErrTimeout    = errors.New("acquisition timed out")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindDeviceBusy:
		return ErrDeviceBusy
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrFailed
	}
}

// Error reports a failed acquisition. Track is 0 for disc-level failures
// such as reading the table of contents.
type Error struct {
	Track int
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	what := "read disc"
	if e.Track > 0 {
		what = fmt.Sprintf("rip track %d", e.Track)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", what, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", what, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) and friends match on Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// classifyOutput guesses the failure kind from a ripper's diagnostics.
func classifyOutput(out string) Kind {
	s := strings.ToLower(out)
	switch {
	case strings.Contains(s, "busy"):
		return KindDeviceBusy
	case strings.Contains(s, "no medium"),
		strings.Contains(s, "no disc"),
		strings.Contains(s, "no cd"),
		strings.Contains(s, "unable to open disc"),
		strings.Contains(s, "no audio tracks"),
		strings.Contains(s, "no such file or directory"):
		return KindNotFound
	default:
		return KindFailed
	}
}

// lastLine returns the last non-empty line of out, for error messages.
func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(out, "\r", "\n")), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
