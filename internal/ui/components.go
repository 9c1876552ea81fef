package ui

import (
	"fmt"
	"strings"

	"github.com/olivier-w/cdviz/internal/playback"
	"github.com/olivier-w/cdviz/internal/playlist"
	"github.com/olivier-w/cdviz/internal/util"
)

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

func stateIcon(s playback.State) string {
	switch s {
	case playback.Playing:
		return "▶"
	case playback.Paused:
		return "❚❚"
	default:
		return "■"
	}
}

// trackWindow returns the slice bounds of at most size tracks around cursor.
func trackWindow(total, cursor, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}

func renderTrackList(tracks []playlist.Track, current, cursor, size int) string {
	start, end := trackWindow(len(tracks), cursor, size)
	var b strings.Builder
	for i := start; i < end; i++ {
		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		style := trackStyle
		if i == current {
			style = currentTrackStyle
		}
		b.WriteString("  " + prefix + style.Render(tracks[i].DisplayName()))
		if tracks[i].Length > 0 {
			b.WriteString("  " + timeStyle.Render(util.FormatDuration(tracks[i].Length)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
