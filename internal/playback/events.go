package playback

import (
	"time"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

// StateChange is emitted when the controller state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the current track changes.
//
// Emitted by:
//   - Select/Next/Previous
//   - SetQueue: first selection, or when the current track was removed
//   - auto-advance after a track ends
//
// Current is nil when the queue became empty.
type TrackChange struct {
	Previous *mixtape.Track
	Current  *mixtape.Track
	Index    int
}

// PlayingChange is emitted when the "is playing" flag flips.
type PlayingChange struct {
	Playing bool
}

// ErrorEvent is emitted when a transition started by the controller itself
// fails, such as playing the next track after auto-advance.
type ErrorEvent struct {
	Track *mixtape.Track
	Err   error
}

// Snapshot is a consistent view of the playback state.
type Snapshot struct {
	State    State
	Index    int
	Track    *mixtape.Track
	QueueLen int
	Position time.Duration
	Duration time.Duration
}

// IsPlaying reports whether playback is running.
func (s Snapshot) IsPlaying() bool { return s.State == StatePlaying }

// Progress returns the position as a fraction of the duration.
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(float64(s.Position)/float64(s.Duration), 1)
}
