package visualizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

const peakChar = '▔'

type colorRGB struct {
	R uint8
	G uint8
	B uint8
}

func (c colorRGB) hex() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func lerpColor(a, b colorRGB, t float64) colorRGB {
	t = clamp01(t)
	return colorRGB{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

// heatColor maps 0..1 (bottom to top of the bar area) onto a blue to red ramp.
func heatColor(t float64) colorRGB {
	t = clamp01(t)
	switch {
	case t < 0.25:
		return lerpColor(colorRGB{R: 16, G: 25, B: 70}, colorRGB{R: 0, G: 174, B: 255}, t/0.25)
	case t < 0.5:
		return lerpColor(colorRGB{R: 0, G: 174, B: 255}, colorRGB{R: 20, G: 255, B: 161}, (t-0.25)/0.25)
	case t < 0.75:
		return lerpColor(colorRGB{R: 20, G: 255, B: 161}, colorRGB{R: 255, G: 230, B: 92}, (t-0.5)/0.25)
	default:
		return lerpColor(colorRGB{R: 255, G: 230, B: 92}, colorRGB{R: 255, G: 80, B: 60}, (t-0.75)/0.25)
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Renderer draws bar heights as columns of block characters, one lipgloss
// colour per row.
type Renderer struct {
	rowStyles []lipgloss.Style
	peakStyle lipgloss.Style
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		peakStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#F5F5F5")),
	}
}

func (r *Renderer) styles(rows int) []lipgloss.Style {
	if len(r.rowStyles) == rows {
		return r.rowStyles
	}
	r.rowStyles = make([]lipgloss.Style, rows)
	for row := range rows {
		// row 0 is the top line
		t := (float64(rows-1-row) + 0.5) / float64(rows)
		r.rowStyles[row] = lipgloss.NewStyle().Foreground(heatColor(t).hex())
	}
	return r.rowStyles
}

// Render draws heights (and optional peak caps, nil for none) scaled against
// maxHeight into a block rows lines tall and about width cells wide.
func (r *Renderer) Render(heights, peaks []float64, maxHeight float64, width, rows int) string {
	if rows < 1 {
		rows = 1
	}
	cols := len(heights)
	if cols == 0 {
		return strings.Repeat("\n", rows-1)
	}
	if maxHeight <= 0 {
		maxHeight = 1
	}

	colWidth := (width - 2) / cols
	if colWidth < 1 {
		colWidth = 1
	}
	gap := 1
	if colWidth <= 1 {
		gap = 0
	}

	styles := r.styles(rows)
	lines := make([]string, rows)
	for row := range rows {
		rowFromBottom := float64(rows - 1 - row)
		var line strings.Builder
		var run strings.Builder
		runIsCap := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runIsCap {
				line.WriteString(r.peakStyle.Render(run.String()))
			} else {
				line.WriteString(styles[row].Render(run.String()))
			}
			run.Reset()
		}

		for b := range cols {
			if b > 0 && gap > 0 {
				run.WriteByte(' ')
			}
			level := clamp01(heights[b]/maxHeight) * float64(rows)
			charIdx := 0
			if level > rowFromBottom+1 {
				charIdx = len(barChars) - 1
			} else if level > rowFromBottom {
				frac := level - rowFromBottom
				charIdx = int(frac * float64(len(barChars)-1))
			}

			isCap := charIdx == 0 && b < len(peaks) && peakRow(peaks[b], maxHeight, rows) == rowFromBottom
			if isCap != runIsCap {
				flush()
				runIsCap = isCap
			}
			ch := barChars[charIdx]
			if isCap {
				ch = peakChar
			}
			for range colWidth - gap {
				run.WriteRune(ch)
			}
			if isCap {
				flush()
				runIsCap = false
			}
		}
		flush()
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}

// peakRow returns the row (counted from the bottom) a cap sits on, or -1
// when there is no cap.
func peakRow(peak, maxHeight float64, rows int) float64 {
	if peak <= 0 {
		return -1
	}
	return math.Min(math.Floor(clamp01(peak/maxHeight)*float64(rows)), float64(rows-1))
}
