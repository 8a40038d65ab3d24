//go:build linux

package mpris

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
)

// Adapter connects the playback controller to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter. volume may be nil.
func New(controls Controls, volume Volume) (*Adapter, error) {
	a := &Adapter{}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{controls: controls, volume: volume}

	a.server = server.NewServer("mixtape", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Mixtape", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	controls Controls
	volume   Volume
}

func (p *playerAdapter) Next() error {
	return p.controls.Next()
}

func (p *playerAdapter) Previous() error {
	return p.controls.Previous()
}

func (p *playerAdapter) Pause() error {
	p.controls.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	return p.controls.Toggle(context.Background())
}

func (p *playerAdapter) Stop() error {
	p.controls.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	return p.controls.Play(context.Background())
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.controls.SeekBy(time.Duration(offset) * time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.controls.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.controls.Snapshot().State), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.controls.Snapshot()
	info, ok := metadataFor(snap)
	if !ok {
		return types.Metadata{}, nil
	}
	return types.Metadata{
		TrackId: dbus.ObjectPath(info.trackID),
		Length:  types.Microseconds(info.length.Microseconds()),
		Title:   info.title,
		Artist:  []string{info.artist},
		Album:   info.album,
		ArtUrl:  info.artURL,
		Url:     info.url,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	if p.volume == nil {
		return 1.0, nil
	}
	return p.volume.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	if p.volume != nil {
		p.volume.SetVolume(v)
	}
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.controls.Snapshot().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return canNavigate(p.controls.Snapshot()), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return canNavigate(p.controls.Snapshot()), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.controls.Snapshot().QueueLen > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.controls.Snapshot().Duration > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}
