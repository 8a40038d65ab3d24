// Package queue keeps the local copy of the user's server-backed queue.
//
// Every mutation is sent to the store and followed by a full refetch; the
// local list is never spliced. Concurrent mutations may race, in which case
// the last refetch to complete wins.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

// Store is the remote queue store. Credentials are passed on every call.
type Store interface {
	Queue(ctx context.Context, sess *session.Session) ([]mixtape.Track, error)
	AddTrack(ctx context.Context, sess *session.Session, t mixtape.Track) error
	RemoveTrack(ctx context.Context, sess *session.Session, id string) error
}

// Change is emitted whenever the local queue is replaced.
type Change struct {
	Tracks  []mixtape.Track
	Version uint64
}

// Manager owns the local queue. It is the only writer of it.
type Manager struct {
	store    Store
	sessions session.Provider
	logger   *zap.Logger

	mu      sync.RWMutex
	tracks  []mixtape.Track
	version uint64
	loaded  bool

	subsMu sync.Mutex
	subs   []*Subscription
	closed bool
}

// NewManager creates a manager with an empty queue.
func NewManager(store Store, sessions session.Provider, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		sessions: sessions,
		logger:   logger.Named("queue"),
	}
}

// Load replaces the local queue with the store's copy.
func (m *Manager) Load(ctx context.Context) error {
	sess := m.sessions.Current()
	if sess == nil {
		return mixtape.ErrUnauthenticated
	}
	return m.refetch(ctx, sess)
}

// Add sends t to the store and refetches. A track already present locally
// is rejected without a request.
func (m *Manager) Add(ctx context.Context, t mixtape.Track) error {
	sess := m.sessions.Current()
	if sess == nil {
		return mixtape.ErrUnauthenticated
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if m.Contains(t.ID) {
		return fmt.Errorf("add %s: %w", t.ID, mixtape.ErrDuplicateTrack)
	}

	if err := m.store.AddTrack(ctx, sess, t); err != nil {
		m.logger.Warn("add failed", zap.String("track_id", t.ID), zap.Error(err))
		m.converge(ctx, sess, err)
		return &mixtape.MutationError{Op: "add", TrackID: t.ID, Err: err}
	}
	m.logger.Debug("track added", zap.String("track_id", t.ID))
	return m.refetch(ctx, sess)
}

// Remove deletes the track from the store and refetches. A track the store
// does not know is not an error: the refetch still runs.
func (m *Manager) Remove(ctx context.Context, id string) error {
	sess := m.sessions.Current()
	if sess == nil {
		return mixtape.ErrUnauthenticated
	}

	err := m.store.RemoveTrack(ctx, sess, id)
	switch {
	case err == nil:
		m.logger.Debug("track removed", zap.String("track_id", id))
	case errors.Is(err, mixtape.ErrTrackNotFound):
		m.logger.Debug("track already absent", zap.String("track_id", id))
	default:
		m.logger.Warn("remove failed", zap.String("track_id", id), zap.Error(err))
		m.converge(ctx, sess, err)
		return &mixtape.MutationError{Op: "remove", TrackID: id, Err: err}
	}
	return m.refetch(ctx, sess)
}

// Clear empties the local queue, e.g. after logout.
func (m *Manager) Clear() {
	m.apply(nil)
	m.mu.Lock()
	m.loaded = false
	m.mu.Unlock()
}

// converge refetches after a failed mutation so the local copy keeps
// tracking server truth. Rejected credentials make another call pointless.
func (m *Manager) converge(ctx context.Context, sess *session.Session, cause error) {
	if errors.Is(cause, mixtape.ErrUnauthenticated) || ctx.Err() != nil {
		return
	}
	if err := m.refetch(ctx, sess); err != nil {
		m.logger.Debug("refetch after failed mutation", zap.Error(err))
	}
}

func (m *Manager) refetch(ctx context.Context, sess *session.Session) error {
	tracks, err := m.store.Queue(ctx, sess)
	if err != nil {
		m.logger.Warn("queue fetch failed", zap.Error(err))
		return err
	}
	m.apply(tracks)
	return nil
}

func (m *Manager) apply(tracks []mixtape.Track) {
	unique := mixtape.Dedupe(tracks)
	if len(unique) != len(tracks) {
		m.logger.Warn("store returned duplicate tracks",
			zap.Int("received", len(tracks)),
			zap.Int("kept", len(unique)))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = unique
	m.version++
	m.loaded = true

	// Broadcast under the lock so subscribers see versions in order.
	m.broadcast(Change{Tracks: cloneTracks(unique), Version: m.version})
	m.logger.Debug("queue replaced", zap.Int("len", len(unique)), zap.Uint64("version", m.version))
}

// Tracks returns a copy of the queue in play order.
func (m *Manager) Tracks() []mixtape.Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTracks(m.tracks)
}

// Len returns the number of queued tracks.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tracks)
}

// Contains reports whether a track with id is queued.
func (m *Manager) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return mixtape.IndexOf(m.tracks, id) >= 0
}

// Loaded reports whether the queue has been fetched at least once.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Version increments on every replacement of the local queue.
func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

func cloneTracks(tracks []mixtape.Track) []mixtape.Track {
	out := make([]mixtape.Track, len(tracks))
	copy(out, tracks)
	return out
}
