package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"time"
)

const defaultKillGrace = 2 * time.Second

// Ripper extracts one disc track into a WAV file at dest.
type Ripper interface {
	Rip(ctx context.Context, track int, dest string) error
}

// CommandRipper runs an external ripper (cdparanoia by default) as
// `<Command> -d <Device> <track> <dest>`.
type CommandRipper struct {
	Command string
	Device  string
	// Timeout bounds a single rip. Zero means no bound beyond ctx.
	Timeout time.Duration
	// KillGrace is how long an interrupted ripper may take to exit before
	// it is killed.
	KillGrace time.Duration
}

// Rip runs the ripper and returns an *Error on failure. A cancelled or
// timed-out rip is interrupted, killed after KillGrace, and its partial
// output removed.
func (r *CommandRipper) Rip(ctx context.Context, track int, dest string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := []string{strconv.Itoa(track), dest}
	if r.Device != "" {
		args = append([]string{"-d", r.Device}, args...)
	}
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = r.KillGrace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = defaultKillGrace
	}
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		removePartial(dest)
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return &Error{Track: track, Kind: KindTimeout, Err: ctxErr}
		}
		return &Error{Track: track, Kind: KindFailed, Err: ctxErr}
	}
	if err != nil {
		removePartial(dest)
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return &Error{Track: track, Kind: KindNotFound, Err: fmt.Errorf("ripper %q not found: %w", r.Command, err)}
		}
		out := stderr.String()
		if line := lastLine(out); line != "" {
			err = fmt.Errorf("%w: %s", err, line)
		}
		return &Error{Track: track, Kind: classifyOutput(out), Err: err}
	}

	if !fileReady(dest) {
		removePartial(dest)
		return &Error{Track: track, Kind: KindFailed, Err: errors.New("ripper produced no audio")}
	}
	return nil
}

func fileReady(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func removePartial(path string) {
	_ = os.Remove(path)
}
