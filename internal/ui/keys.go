package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Play     key.Binding
	Stop     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	SeekBack key.Binding
	SeekFwd  key.Binding
	StepBack key.Binding
	StepFwd  key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n/p", "track")),
		Prev:     key.NewBinding(key.WithKeys("p")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "scroll")),
		Down:     key.NewBinding(key.WithKeys("j", "down")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		SeekBack: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "seek")),
		SeekFwd:  key.NewBinding(key.WithKeys("right", "l")),
		StepBack: key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "±5%")),
		StepFwd:  key.NewBinding(key.WithKeys("]")),
		VolUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "volume")),
		VolDown:  key.NewBinding(key.WithKeys("-", "_")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) helpText(hasList bool) string {
	bindings := []key.Binding{k.Play, k.Stop, k.SeekBack, k.StepBack, k.VolUp}
	if hasList {
		bindings = append(bindings, k.Next, k.Up, k.Select)
	}
	bindings = append(bindings, k.Quit)

	s := ""
	for i, b := range bindings {
		if i > 0 {
			s += "  "
		}
		h := b.Help()
		s += h.Key + " " + h.Desc
	}
	return s + "  0-9 jump"
}

// digitFraction maps the digit keys 0-9 to 0%-90% of the track.
func digitFraction(msg tea.KeyMsg) (float64, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return float64(s[0]-'0') / 10, true
}
