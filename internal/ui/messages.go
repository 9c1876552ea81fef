package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/cdviz/internal/acquire"
)

type barTickMsg time.Time
type progressTickMsg time.Time

// opDoneMsg reports the end of a blocking controller operation.
type opDoneMsg struct {
	err error
}

type prefetchedMsg acquire.Result

func barTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return barTickMsg(t)
	})
}

func progressTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func waitPrefetch(ch <-chan acquire.Result) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return prefetchedMsg(r)
	}
}
