// Package playback drives a media element through the current mixtape queue.
//
// The Controller is a state machine fed by queue snapshots and user intents.
// It owns the current index and the "is playing" flag; the flag only turns
// true once the media element has accepted the play request.
package playback

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/player"
)

var (
	// ErrEmptyQueue is returned by Play when there is nothing to play.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrIndexOutOfRange is returned by Select for an invalid index.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Controller implements the playback state machine.
type Controller struct {
	media  player.Interface
	logger *zap.Logger

	// opMu serializes transitions that touch the media element.
	opMu sync.Mutex

	mu       sync.RWMutex
	tracks   []mixtape.Track
	index    int
	selected bool
	state    State
	position time.Duration
	duration time.Duration
	handle   uint64
	outbox   []func(*Subscription)

	pendingMu sync.Mutex
	pending   context.CancelFunc

	subsMu sync.Mutex
	subs   []*Subscription

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a controller bound to media and starts consuming its events.
func New(media player.Interface, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		media:  media,
		logger: logger,
		state:  StateIdle,
		ctx:    ctx,
		cancel: cancel,
	}
	c.wg.Add(1)
	go c.run()
	return c
}

func (c *Controller) run() {
	defer c.wg.Done()
	events := c.media.Events()
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleMediaEvent(ev)
		}
	}
}

func (c *Controller) handleMediaEvent(ev player.Event) {
	c.mu.RLock()
	current := c.handle
	c.mu.RUnlock()

	// Handles only grow, so anything older than the bound source is stale.
	if ev.Handle < current {
		c.logger.Debug("dropping stale media event",
			zap.Stringer("kind", ev.Kind),
			zap.Uint64("handle", ev.Handle),
			zap.Uint64("current", current))
		return
	}

	switch ev.Kind {
	case player.EventLoadedMetadata:
		c.OnLoadedMetadata(ev.Duration)
	case player.EventTimeUpdate:
		c.OnTimeUpdate(ev.Position)
	case player.EventEnded:
		c.OnEnded()
	}
}

// SetQueue replaces the queue snapshot.
//
// When the current track is still in the new queue the index follows it.
// When it was removed the index is clamped, playback stops and the
// controller goes back to Ready.
func (c *Controller) SetQueue(tracks []mixtape.Track) {
	if c.currentRemovedBy(tracks) {
		c.cancelPending()
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	unload := c.applyQueueLocked(tracks)
	c.mu.Unlock()

	if unload {
		c.media.Unload()
	}
	c.flush()
}

func (c *Controller) currentRemovedBy(tracks []mixtape.Track) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.selected || len(c.tracks) == 0 {
		return false
	}
	return mixtape.IndexOf(tracks, c.tracks[c.index].ID) < 0
}

func (c *Controller) applyQueueLocked(tracks []mixtape.Track) (unload bool) {
	prev := c.currentLocked()
	c.tracks = slices.Clone(tracks)

	switch {
	case len(c.tracks) == 0:
		unload = c.boundLocked()
		c.index = 0
		c.selected = false
		c.resetTimesLocked()
		c.setStateLocked(StateIdle)
		if prev != nil {
			c.trackChangedLocked(prev)
		}
	case !c.selected:
		c.index = 0
		c.selected = true
		c.resetTimesLocked()
		c.setStateLocked(StateReady)
		c.trackChangedLocked(prev)
	default:
		if prev != nil {
			if i := mixtape.IndexOf(c.tracks, prev.ID); i >= 0 {
				c.index = i
				return false
			}
		}
		unload = c.boundLocked()
		c.index = min(max(c.index, 0), len(c.tracks)-1)
		c.resetTimesLocked()
		c.setStateLocked(StateReady)
		c.trackChangedLocked(prev)
	}
	return unload
}

// Select makes the track at index i current without starting playback.
func (c *Controller) Select(i int) error {
	c.mu.RLock()
	n := len(c.tracks)
	c.mu.RUnlock()
	if i < 0 || i >= n {
		return fmt.Errorf("select %d of %d: %w", i, n, ErrIndexOutOfRange)
	}

	c.cancelPending()
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if i >= len(c.tracks) {
		n = len(c.tracks)
		c.mu.Unlock()
		return fmt.Errorf("select %d of %d: %w", i, n, ErrIndexOutOfRange)
	}
	unload := c.selectLocked(i)
	c.mu.Unlock()

	if unload {
		c.media.Unload()
	}
	c.flush()
	return nil
}

func (c *Controller) selectLocked(i int) (unload bool) {
	prev := c.currentLocked()
	unload = c.boundLocked()
	c.index = i
	c.selected = true
	c.resetTimesLocked()
	c.setStateLocked(StateReady)
	c.trackChangedLocked(prev)
	return unload
}

// Next selects the following track, wrapping to the first.
// It does nothing when the queue has fewer than two tracks.
func (c *Controller) Next() error {
	return c.step(1)
}

// Previous selects the preceding track, wrapping to the last.
// It does nothing when the queue has fewer than two tracks.
func (c *Controller) Previous() error {
	return c.step(-1)
}

func (c *Controller) step(delta int) error {
	c.mu.RLock()
	n := len(c.tracks)
	i := c.index
	c.mu.RUnlock()
	if n <= 1 {
		return nil
	}
	return c.Select(((i+delta)%n + n) % n)
}

// Play starts or resumes playback of the current track.
//
// A track without a preview fails with a *mixtape.PlaybackUnavailableError
// and leaves the state unchanged. Any other failure restores the previous
// state and leaves the controller not playing.
func (c *Controller) Play(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	err := c.play(ctx)
	c.flush()
	return err
}

// play must be called with opMu held.
func (c *Controller) play(ctx context.Context) error {
	c.mu.Lock()
	if len(c.tracks) == 0 {
		c.mu.Unlock()
		return ErrEmptyQueue
	}
	if c.state == StatePlaying || c.state == StateLoading {
		c.mu.Unlock()
		return nil
	}
	if !c.selected {
		c.selectLocked(c.index)
	}
	track := c.tracks[c.index]
	if !track.HasPreview() {
		c.mu.Unlock()
		return mixtape.Unavailable(track, nil)
	}
	resume := c.state == StatePaused
	fallback := StateReady
	if resume {
		fallback = StatePaused
	}
	playCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	c.setPending(cancel)
	c.setStateLocked(StateLoading)
	c.mu.Unlock()
	c.flush()

	defer func() {
		stop()
		c.clearPending()
		cancel()
	}()

	var (
		h       uint64
		err     error
		loaded  bool
		loadErr error
	)
	if !resume {
		h, loadErr = c.media.Load(playCtx, track.PreviewURL)
		loaded = loadErr == nil
		err = loadErr
	}
	if err == nil {
		err = c.media.Play(playCtx)
	}

	if err != nil {
		if loaded {
			c.media.Unload()
		}
		c.mu.Lock()
		if loaded || !resume {
			c.resetTimesLocked()
		}
		c.setStateLocked(fallback)
		c.mu.Unlock()

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.logger.Debug("play cancelled", zap.String("track_id", track.ID))
			return err
		}
		c.logger.Warn("play failed",
			zap.String("track_id", track.ID),
			zap.Error(err))
		if loadErr != nil {
			return mixtape.Unavailable(track, loadErr)
		}
		return fmt.Errorf("play %s: %w", track.ID, err)
	}

	c.mu.Lock()
	if !resume {
		c.handle = h
	}
	c.setStateLocked(StatePlaying)
	c.mu.Unlock()
	return nil
}

// Pause pauses playback. A pending play is cancelled.
func (c *Controller) Pause() {
	if c.State() == StateLoading {
		c.cancelPending()
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state != StatePlaying {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StatePaused)
	c.mu.Unlock()

	c.media.Pause()
	c.flush()
}

// Toggle pauses when playing or loading and plays otherwise.
func (c *Controller) Toggle(ctx context.Context) error {
	switch c.State() {
	case StatePlaying, StateLoading:
		c.Pause()
		return nil
	}
	return c.Play(ctx)
}

// Stop releases the media source and returns to Ready.
func (c *Controller) Stop() {
	c.cancelPending()

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state == StateIdle || c.state == StateReady {
		c.mu.Unlock()
		return
	}
	unload := c.boundLocked()
	c.resetTimesLocked()
	c.setStateLocked(StateReady)
	c.mu.Unlock()

	if unload {
		c.media.Unload()
	}
	c.flush()
}

// Seek moves to a fraction of the current duration, clamped to [0, 1].
// It is a no-op while the duration is unknown.
func (c *Controller) Seek(fraction float64) {
	c.mu.RLock()
	d := c.duration
	c.mu.RUnlock()
	if d <= 0 {
		return
	}
	fraction = min(max(fraction, 0), 1)
	c.SeekTo(time.Duration(fraction * float64(d)))
}

// SeekTo moves to an absolute position, clamped to the current duration.
func (c *Controller) SeekTo(pos time.Duration) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.duration <= 0 || !c.state.IsActive() {
		c.mu.Unlock()
		return
	}
	pos = min(max(pos, 0), c.duration)
	c.position = pos
	c.mu.Unlock()

	c.media.Seek(pos)
}

// SeekBy moves relative to the current position.
func (c *Controller) SeekBy(delta time.Duration) {
	c.SeekTo(c.Position() + delta)
}

// OnTimeUpdate records the media position.
func (c *Controller) OnTimeUpdate(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsActive() {
		return
	}
	c.position = max(pos, 0)
}

// OnLoadedMetadata records the duration of the bound source.
func (c *Controller) OnLoadedMetadata(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		return
	}
	switch c.state {
	case StateLoading, StatePlaying, StatePaused:
		c.duration = d
	}
}

// OnEnded handles the end of the current track: it advances to the next
// track and keeps playing, or goes Idle with no track when there is nowhere
// to go.
func (c *Controller) OnEnded() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state != StatePlaying {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateEnded)
	n := len(c.tracks)
	if n <= 1 {
		prev := c.currentLocked()
		c.selected = false
		c.resetTimesLocked()
		c.setStateLocked(StateIdle)
		c.trackChangedLocked(prev)
		c.mu.Unlock()
		c.media.Unload()
		c.flush()
		return
	}
	c.selectLocked((c.index + 1) % n)
	c.mu.Unlock()
	c.media.Unload()
	c.flush()

	if err := c.play(c.ctx); err != nil && c.ctx.Err() == nil {
		track := c.CurrentTrack()
		c.enqueue(func(s *Subscription) {
			s.sendError(ErrorEvent{Track: track, Err: err})
		})
	}
	c.flush()
}

// Snapshot returns a consistent view of the playback state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		State:    c.state,
		Index:    c.index,
		Track:    c.currentLocked(),
		QueueLen: len(c.tracks),
		Position: c.position,
		Duration: c.duration,
	}
}

// CurrentTrack returns a copy of the current track, or nil.
func (c *Controller) CurrentTrack() *mixtape.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentLocked()
}

// State returns the controller state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsPlaying reports whether the media element is playing.
func (c *Controller) IsPlaying() bool {
	return c.State() == StatePlaying
}

// Index returns the current index.
func (c *Controller) Index() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Tracks returns a copy of the queue snapshot.
func (c *Controller) Tracks() []mixtape.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tracks)
}

// Position returns the last known position.
func (c *Controller) Position() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

// Duration returns the duration of the bound source, or 0 if unknown.
func (c *Controller) Duration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.duration
}

// Subscribe returns a subscription to controller events.
func (c *Controller) Subscribe() *Subscription {
	sub := newSubscription()
	c.subsMu.Lock()
	c.subs = append(c.subs, sub)
	c.subsMu.Unlock()
	return sub
}

// Unsubscribe removes and closes a subscription.
func (c *Controller) Unsubscribe(sub *Subscription) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = slices.Delete(c.subs, i, i+1)
			sub.close()
			return
		}
	}
}

// Close stops the event loop, releases the media source and closes all
// subscriptions. The media element itself is left open.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.wg.Wait()

		c.opMu.Lock()
		c.mu.Lock()
		unload := c.boundLocked()
		c.mu.Unlock()
		if unload {
			c.media.Unload()
		}
		c.opMu.Unlock()

		c.subsMu.Lock()
		for _, sub := range c.subs {
			sub.close()
		}
		c.subs = nil
		c.subsMu.Unlock()
	})
}

func (c *Controller) currentLocked() *mixtape.Track {
	if !c.selected || c.index < 0 || c.index >= len(c.tracks) {
		return nil
	}
	t := c.tracks[c.index]
	return &t
}

// boundLocked reports whether a media source may be attached.
func (c *Controller) boundLocked() bool {
	switch c.state {
	case StateLoading, StatePlaying, StatePaused, StateEnded:
		return true
	}
	return false
}

func (c *Controller) resetTimesLocked() {
	c.position = 0
	c.duration = 0
}

func (c *Controller) setStateLocked(s State) {
	prev := c.state
	if prev == s {
		return
	}
	c.state = s
	c.outbox = append(c.outbox, func(sub *Subscription) {
		sub.sendState(StateChange{Previous: prev, Current: s})
	})
	if wasPlaying, playing := prev == StatePlaying, s == StatePlaying; wasPlaying != playing {
		c.outbox = append(c.outbox, func(sub *Subscription) {
			sub.sendPlaying(PlayingChange{Playing: playing})
		})
	}
}

func (c *Controller) trackChangedLocked(prev *mixtape.Track) {
	e := TrackChange{Previous: prev, Current: c.currentLocked(), Index: c.index}
	c.outbox = append(c.outbox, func(sub *Subscription) {
		sub.sendTrack(e)
	})
}

func (c *Controller) enqueue(f func(*Subscription)) {
	c.mu.Lock()
	c.outbox = append(c.outbox, f)
	c.mu.Unlock()
}

// flush delivers queued events in transition order.
func (c *Controller) flush() {
	c.mu.Lock()
	box := c.outbox
	c.outbox = nil
	c.mu.Unlock()
	if len(box) == 0 {
		return
	}

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		for _, f := range box {
			f(sub)
		}
	}
}

func (c *Controller) setPending(cancel context.CancelFunc) {
	c.pendingMu.Lock()
	c.pending = cancel
	c.pendingMu.Unlock()
}

func (c *Controller) clearPending() {
	c.pendingMu.Lock()
	c.pending = nil
	c.pendingMu.Unlock()
}

func (c *Controller) cancelPending() {
	c.pendingMu.Lock()
	cancel := c.pending
	c.pendingMu.Unlock()
	if cancel != nil {
		cancel()
	}
}
