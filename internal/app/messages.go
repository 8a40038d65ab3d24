package app

import (
	"time"

	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/generate"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/queue"
	"github.com/llehouerou/mixtape/internal/theme"
)

// TickMsg refreshes the playback position and drives the theme pulse.
type TickMsg time.Time

// QueueChangedMsg carries a new queue snapshot.
type QueueChangedMsg queue.Change

// PlaybackStateMsg is sent when the controller state changes.
type PlaybackStateMsg playback.StateChange

// TrackChangedMsg is sent when the current track changes.
type TrackChangedMsg playback.TrackChange

// PlayingChangedMsg is sent when the "is playing" flag flips.
type PlayingChangedMsg playback.PlayingChange

// PlaybackErrorMsg reports a failure of a controller-initiated transition.
type PlaybackErrorMsg playback.ErrorEvent

// ThemeMsg carries a new ambient theme.
type ThemeMsg theme.Update

// GenerationMsg reports a generation workflow transition.
type GenerationMsg generate.Event

// OpResultMsg is the outcome of an asynchronous user operation.
type OpResultMsg struct {
	Op      errmsg.Op
	Context string
	Err     error
}

// HistoryMsg carries the loaded prompt history.
type HistoryMsg struct {
	Entries []mixtape.HistoryEntry
	Err     error
}

// ClearMessageMsg hides the status message if it is still the one shown.
type ClearMessageMsg struct {
	Version int
}
