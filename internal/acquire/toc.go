package acquire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/olivier-w/cdviz/internal/playlist"
	"github.com/rs/zerolog/log"
)

// sectorsPerSecond is the Red Book audio CD frame rate.
const sectorsPerSecond = 75

// tocLine matches one entry of `cdparanoia -Q` output:
//
//	  1.    16503 [03:40.03]        0 [00:00.00]    no   no  2
var tocLine = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+(\d+)\s+\[[^\]]*\]\s+(\d+)`)

// ReadTOC queries the disc in device and returns one Disc track per audio
// track, titled "Track N".
func ReadTOC(ctx context.Context, command, device string) ([]playlist.Track, error) {
	args := []string{"-Q"}
	if device != "" {
		args = append([]string{"-d", device}, args...)
	}
	out, err := exec.CommandContext(ctx, command, args...).CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindNotFound, Err: fmt.Errorf("%q not found: %w", command, err)}
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, Err: ctx.Err()}
		}
		if line := lastLine(string(out)); line != "" {
			err = fmt.Errorf("%w: %s", err, line)
		}
		return nil, &Error{Kind: classifyOutput(string(out)), Err: err}
	}

	tracks, err := ParseTOC(string(out))
	if err != nil {
		return nil, err
	}
	log.Info().Str("device", device).Int("tracks", len(tracks)).Msg("read disc table of contents")
	return tracks, nil
}

// ParseTOC extracts the audio tracks from a cdparanoia table of contents.
func ParseTOC(out string) ([]playlist.Track, error) {
	var tracks []playlist.Track
	for _, m := range tocLine.FindAllStringSubmatch(out, -1) {
		number, err1 := strconv.Atoi(m[1])
		sectors, err2 := strconv.Atoi(m[2])
		begin, err3 := strconv.Atoi(m[3])
		if err := errors.Join(err1, err2, err3); err != nil {
			return nil, &Error{Kind: KindFailed, Err: fmt.Errorf("parsing table of contents: %w", err)}
		}
		tracks = append(tracks, playlist.Track{
			Number: number,
			Title:  fmt.Sprintf("Track %d", number),
			Length: time.Duration(sectors) * time.Second / sectorsPerSecond,
			Kind:   playlist.Disc,
			Offset: begin,
		})
	}
	if len(tracks) == 0 {
		return nil, &Error{Kind: KindNotFound, Err: errors.New("no audio tracks on disc")}
	}
	return tracks, nil
}
