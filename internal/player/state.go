// internal/player/state.go
package player

// State is the media element's own state.
//
//	┌──────────┐  Load+Play  ┌──────────┐
//	│  Stopped │ ───────────▶│  Playing │
//	└──────────┘             └──────────┘
//	     ▲                       │   ▲
//	     │ Unload / ended  Pause │   │ Play
//	     │                       ▼   │
//	     │                   ┌──────────┐
//	     └───────────────────│  Paused  │
//	           Unload        └──────────┘
//
// A loaded source that has not started yet is Stopped.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}
