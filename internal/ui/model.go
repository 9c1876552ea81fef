package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/cdviz/internal/acquire"
	"github.com/olivier-w/cdviz/internal/playback"
	"github.com/olivier-w/cdviz/internal/playlist"
	"github.com/olivier-w/cdviz/internal/util"
	"github.com/olivier-w/cdviz/internal/visualizer"
)

const (
	seekStep     = 5 * time.Second
	fractionStep = 0.05
	volumeStep   = 0.05
	statusTTL    = 5 * time.Second
	listSize     = 8
)

// Controller is the playback surface the UI drives. *playback.Controller
// implements it.
type Controller interface {
	TogglePlay() error
	Stop()
	Next() error
	Prev() error
	Select(i int) error
	Seek(fraction float64) error
	SeekBy(d time.Duration) error
	SetVolume(v float64)
	Volume() float64
	Frame() playback.Frame
	Bars() []float64
}

// Options configures the Model.
type Options struct {
	Source       string // shown under the header, e.g. the folder or "Audio CD"
	Tracks       []playlist.Track
	BarTick      time.Duration
	ProgressTick time.Duration
	MaxHeight    float64
	BarRows      int
	Prefetched   <-chan acquire.Result
}

// Model is the Bubbletea model for the cdviz TUI. It renders what the
// controller reports and never touches audio state directly.
type Model struct {
	ctrl Controller
	opts Options
	keys keyMap

	renderer *visualizer.Renderer
	peaks    *visualizer.Peaks
	progress progress.Model
	spinner  spinner.Model

	frame  playback.Frame
	bars   []float64
	caps   []float64
	cursor int

	busy       bool
	status     string
	statusTime time.Time

	width    int
	quitting bool
}

// New creates a Model.
func New(ctrl Controller, opts Options) Model {
	if opts.BarTick <= 0 {
		opts.BarTick = 50 * time.Millisecond
	}
	if opts.ProgressTick <= 0 {
		opts.ProgressTick = 100 * time.Millisecond
	}
	if opts.BarRows <= 0 {
		opts.BarRows = 12
	}
	fps := max(int(time.Second/opts.BarTick), 1)
	return Model{
		ctrl:     ctrl,
		opts:     opts,
		keys:     defaultKeyMap(),
		renderer: visualizer.NewRenderer(),
		peaks:    visualizer.NewPeaks(fps),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		frame:    ctrl.Frame(),
		cursor:   ctrl.Frame().Index,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		barTickCmd(m.opts.BarTick),
		progressTickCmd(m.opts.ProgressTick),
		waitPrefetch(m.opts.Prefetched),
		tea.SetWindowTitle("cdviz"),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case opDoneMsg:
		m.busy = false
		m.frame = m.ctrl.Frame()
		m.cursor = m.frame.Index
		if msg.err != nil {
			m.setStatus(msg.err.Error())
		}
		return m, tea.SetWindowTitle(windowTitle(m.frame))

	case prefetchedMsg:
		if msg.Err == nil {
			m.setStatus(fmt.Sprintf("track %d ready", msg.Track))
		}
		return m, waitPrefetch(m.opts.Prefetched)

	case barTickMsg:
		m.bars = m.ctrl.Bars()
		m.caps = m.peaks.Update(m.bars)
		return m, barTickCmd(m.opts.BarTick)

	case progressTickMsg:
		m.frame = m.ctrl.Frame()
		if m.status != "" && time.Since(m.statusTime) > statusTTL {
			m.status = ""
		}
		return m, progressTickCmd(m.opts.ProgressTick)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.opts.Tracks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.VolUp):
		m.ctrl.SetVolume(m.ctrl.Volume() + volumeStep)
		m.frame.Volume = m.ctrl.Volume()
		return m, nil
	case key.Matches(msg, m.keys.VolDown):
		m.ctrl.SetVolume(m.ctrl.Volume() - volumeStep)
		m.frame.Volume = m.ctrl.Volume()
		return m, nil
	}

	// everything below waits on the controller, which is held while a
	// track loads
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Play):
		return m.run(m.ctrl.TogglePlay)
	case key.Matches(msg, m.keys.Next):
		return m.run(m.ctrl.Next)
	case key.Matches(msg, m.keys.Prev):
		return m.run(m.ctrl.Prev)
	case key.Matches(msg, m.keys.Select):
		i := m.cursor
		return m.run(func() error { return m.ctrl.Select(i) })
	case key.Matches(msg, m.keys.Stop):
		m.ctrl.Stop()
		m.peaks.Reset()
		m.bars = m.ctrl.Bars()
		m.caps = nil
		m.frame = m.ctrl.Frame()
		return m, tea.SetWindowTitle(windowTitle(m.frame))
	case key.Matches(msg, m.keys.SeekBack):
		m.seek(m.ctrl.SeekBy(-seekStep))
	case key.Matches(msg, m.keys.SeekFwd):
		m.seek(m.ctrl.SeekBy(seekStep))
	case key.Matches(msg, m.keys.StepBack):
		m.seek(m.ctrl.Seek(m.frame.Fraction - fractionStep))
	case key.Matches(msg, m.keys.StepFwd):
		m.seek(m.ctrl.Seek(m.frame.Fraction + fractionStep))
	default:
		if f, ok := digitFraction(msg); ok {
			m.seek(m.ctrl.Seek(f))
		}
	}
	return m, nil
}

// run starts a blocking controller operation off the UI goroutine.
func (m Model) run(op func() error) (Model, tea.Cmd) {
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return opDoneMsg{err: op()}
	})
}

func (m *Model) seek(err error) {
	if err != nil {
		m.setStatus(err.Error())
		return
	}
	m.frame = m.ctrl.Frame()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusTime = time.Now()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 60
	}

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("cdviz"))
	if m.opts.Source != "" {
		b.WriteString("  " + sourceStyle.Render(m.opts.Source))
	}
	b.WriteString("\n\n")

	title := m.frame.Track.Title
	if title == "" {
		title = "no track"
	} else {
		title = m.frame.Track.DisplayName()
	}
	b.WriteString("  " + titleStyle.Render(title) + "\n\n")

	bars := m.renderer.Render(m.bars, m.caps, m.opts.MaxHeight, w-4, m.opts.BarRows)
	for _, line := range strings.Split(bars, "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	elapsed := util.FormatDuration(m.frame.Elapsed)
	total := util.FormatDuration(m.frame.Total)
	m.progress.Width = max(w-len(elapsed)-len(total)-6, 10)
	b.WriteString(fmt.Sprintf("  %s %s %s\n\n",
		timeStyle.Render(elapsed), m.progress.ViewAs(m.frame.Fraction), timeStyle.Render(total)))

	left := fmt.Sprintf("%s  %s", stateIcon(m.frame.State), m.frame.State)
	if m.busy {
		left += "  " + m.spinner.View() + " loading"
	}
	vol := renderVolumePercent(m.frame.Volume)
	gap := max(w-len(left)-len(vol)-4, 2)
	b.WriteString("  " + statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(vol) + "\n")

	if m.frame.Err != nil {
		b.WriteString("  " + errorStyle.Render(m.frame.Err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("  " + helpStyle.Render(m.status) + "\n")
	}

	if len(m.opts.Tracks) > 1 {
		b.WriteString("\n")
		b.WriteString(renderTrackList(m.opts.Tracks, m.frame.Index, m.cursor, listSize))
	}

	b.WriteString("\n  " + helpStyle.Render(m.keys.helpText(len(m.opts.Tracks) > 1)) + "\n")
	return b.String()
}

func windowTitle(f playback.Frame) string {
	if f.Track.Title == "" {
		return "cdviz"
	}
	return stateIcon(f.State) + " " + f.Track.Title + " · cdviz"
}
