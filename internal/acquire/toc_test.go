package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olivier-w/cdviz/internal/playlist"
)

const sampleTOC = `cdparanoia III release 10.2 (September 11, 2008)

Table of contents (audio tracks only):
track        length               begin        copy pre ch
===========================================================
  1.    16503 [03:40.03]        0 [00:00.00]    no   no  2
  2.    19240 [04:16.40]    16503 [03:40.03]    no   no  2
 10.      750 [00:10.00]    35743 [07:56.43]    no   no  2
TOTAL   36493 [08:06.43]    (audio only)
`

func TestParseTOC(t *testing.T) {
	tracks, err := ParseTOC(sampleTOC)
	if err != nil {
		t.Fatalf("ParseTOC: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	first := tracks[0]
	if first.Number != 1 || first.Title != "Track 1" || first.Kind != playlist.Disc || first.Offset != 0 {
		t.Fatalf("unexpected first track %+v", first)
	}
	if first.Length != 220*time.Second+40*time.Millisecond {
		t.Fatalf("unexpected first track length %v", first.Length)
	}
	if tracks[1].Offset != 16503 {
		t.Fatalf("unexpected offset %d", tracks[1].Offset)
	}
	if tracks[2].Number != 10 || tracks[2].Length != 10*time.Second {
		t.Fatalf("unexpected last track %+v", tracks[2])
	}
}

func TestParseTOCNoTracks(t *testing.T) {
	_, err := ParseTOC("cdparanoia III\nUnable to open disc.\n")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadTOCFromCommand(t *testing.T) {
	script := writeScript(t, "cat >&2 <<'EOF'\n"+sampleTOC+"EOF")
	tracks, err := ReadTOC(context.Background(), script, "/dev/fake")
	if err != nil {
		t.Fatalf("ReadTOC: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
}

func TestReadTOCNoDisc(t *testing.T) {
	script := writeScript(t, `echo "Unable to open disc.  Is there an audio CD in the drive?" >&2; exit 1`)
	_, err := ReadTOC(context.Background(), script, "/dev/fake")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
