// internal/player/interface.go
package player

import (
	"context"
	"time"
)

// EventKind identifies a media element event.
type EventKind int

const (
	EventLoadedMetadata EventKind = iota
	EventTimeUpdate
	EventEnded
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventTimeUpdate:
		return "timeupdate"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is emitted by a media element. Handle identifies the Load call the
// event belongs to, so consumers can drop events from an unloaded source.
type Event struct {
	Kind     EventKind
	Handle   uint64
	Position time.Duration // EventTimeUpdate
	Duration time.Duration // EventLoadedMetadata
}

// Interface is a playable media element bound to one source at a time.
type Interface interface {
	// Load binds the element to url and returns the new handle.
	Load(ctx context.Context, url string) (uint64, error)
	// Play starts or resumes the loaded source. It fails if the element
	// cannot start, in which case nothing is playing.
	Play(ctx context.Context) error
	Pause()
	Seek(position time.Duration)
	// Unload releases the current source. Events for it are no longer sent.
	Unload()
	State() State
	Events() <-chan Event
	Close() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
