package playback

// State is the controller's transport state.
type State int32

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// IsActive reports whether a track is loaded and positioned, i.e. seeking
// is allowed.
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}
