// internal/playback/state.go
package playback

// State is the controller state.
//
//	Idle ──queue non-empty──▶ Ready ──play──▶ Loading ──ack──▶ Playing
//	                           ▲  ▲              │               │  ▲
//	                           │  └──play failed─┘         pause │  │ play
//	                           │                                 ▼  │
//	                           └──select / track removed──── Paused
//
//	Playing ──ended──▶ Ended ──▶ Ready(next) ──▶ Loading ──▶ Playing
//	                         └─▶ Idle (queue length ≤ 1)
type State int

const (
	StateIdle State = iota
	StateReady
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReady:
		return "Ready"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// IsActive returns true if the media element holds a started source.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// CanPlay returns true if play is a valid transition from s.
func (s State) CanPlay() bool {
	return s == StateReady || s == StatePaused || s == StateIdle || s == StateEnded
}
