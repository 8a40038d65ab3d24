// Package mpris exposes the playback controller over the MPRIS D-Bus interface.
package mpris

import (
	"context"
	"time"

	"github.com/llehouerou/mixtape/internal/playback"
)

// Controls is the part of the playback controller exposed over MPRIS.
type Controls interface {
	Play(ctx context.Context) error
	Pause()
	Toggle(ctx context.Context) error
	Stop()
	Next() error
	Previous() error
	SeekBy(delta time.Duration)
	SeekTo(pos time.Duration)
	Snapshot() playback.Snapshot
}

// Volume is optionally implemented by the media element.
type Volume interface {
	Volume() float64
	SetVolume(v float64)
}
