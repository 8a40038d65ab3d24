package theme

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

const (
	DefaultDebounce      = 120 * time.Millisecond
	DefaultSampleTimeout = 10 * time.Second
)

// Sampler returns the dominant color of an image.
type Sampler interface {
	DominantColor(ctx context.Context, url string) (colorful.Color, error)
}

// Options configures an Engine.
type Options struct {
	Debounce      time.Duration
	SampleTimeout time.Duration
	Logger        *zap.Logger
}

// Update is a published state together with the track it was derived for.
type Update struct {
	State   State
	TrackID string
	Seq     uint64
}

// Engine recomputes the theme whenever the track, the analysis or the
// playing flag changes. Artwork sampling is debounced per track change and
// samples that finish after a newer track was set are discarded.
type Engine struct {
	sampler       Sampler
	debounce      time.Duration
	sampleTimeout time.Duration
	logger        *zap.Logger

	mu       sync.Mutex
	track    *mixtape.Track
	analysis *mixtape.AnalysisResult
	playing  bool
	dominant colorful.Color
	seq      uint64
	timer    *time.Timer
	cancel   context.CancelFunc
	current  Update
	closed   bool

	subs []*Subscription

	ctx      context.Context
	stop     context.CancelFunc
	sampling sync.WaitGroup
}

// NewEngine creates an engine. A nil sampler disables artwork sampling.
func NewEngine(sampler Sampler, opts Options) *Engine {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.SampleTimeout <= 0 {
		opts.SampleTimeout = DefaultSampleTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Engine{
		sampler:       sampler,
		debounce:      opts.Debounce,
		sampleTimeout: opts.SampleTimeout,
		logger:        opts.Logger,
		dominant:      DefaultDominant,
		current:       Update{State: Initial()},
		ctx:           ctx,
		stop:          stop,
	}
}

// SetTrack sets the current track. nil clears it.
func (e *Engine) SetTrack(t *mixtape.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if sameArtwork(e.track, t) {
		if t != nil {
			copied := *t
			e.track = &copied
		}
		return
	}

	e.seq++
	e.abortSampleLocked()
	if t == nil {
		e.track = nil
	} else {
		copied := *t
		e.track = &copied
	}

	if e.track == nil || !e.track.HasArtwork() || e.sampler == nil {
		e.dominant = DefaultDominant
		e.publishLocked()
		return
	}

	token, url := e.seq, e.track.AlbumArtURL
	e.timer = time.AfterFunc(e.debounce, func() { e.sample(token, url) })
}

// SetAnalysis sets the latest analysis. nil clears it.
func (e *Engine) SetAnalysis(a *mixtape.AnalysisResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if a == nil {
		e.analysis = nil
	} else {
		copied := *a
		e.analysis = &copied
	}
	e.publishLocked()
}

// SetPlaying sets the playing flag.
func (e *Engine) SetPlaying(playing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.playing == playing {
		return
	}
	e.playing = playing
	e.publishLocked()
}

// State returns the current visual state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.State
}

// Current returns the current update.
func (e *Engine) Current() Update {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) sample(token uint64, url string) {
	e.mu.Lock()
	if e.closed || token != e.seq {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(e.ctx, e.sampleTimeout)
	e.cancel = cancel
	e.sampling.Add(1)
	e.mu.Unlock()

	defer e.sampling.Done()
	defer cancel()

	c, err := e.sampler.DominantColor(ctx, url)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || token != e.seq {
		e.logger.Debug("discarding artwork sample",
			zap.String("url", url),
			zap.Error(mixtape.ErrStaleResponse))
		return
	}
	e.cancel = nil
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Debug("artwork sampling failed, using default color",
				zap.String("url", url),
				zap.Error(err))
		}
		c = DefaultDominant
	}
	e.dominant = c
	e.publishLocked()
}

func (e *Engine) abortSampleLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) publishLocked() {
	u := Update{
		State: Derive(e.dominant, e.analysis, e.playing),
		Seq:   e.seq,
	}
	if e.track != nil {
		u.TrackID = e.track.ID
	}
	if u == e.current {
		return
	}
	e.current = u
	for _, s := range e.subs {
		s.send(u)
	}
}

// Close stops pending samples and ends all subscriptions.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.abortSampleLocked()
	e.stop()
	e.mu.Unlock()

	e.sampling.Wait()

	e.mu.Lock()
	for _, s := range e.subs {
		close(s.doneCh)
	}
	e.subs = nil
	e.mu.Unlock()
}

func sameArtwork(a, b *mixtape.Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.AlbumArtURL == b.AlbumArtURL
}

// Subscription delivers theme updates. Only the latest update is kept when
// the subscriber falls behind.
type Subscription struct {
	Updates <-chan Update
	Done    <-chan struct{}

	updateCh chan Update
	doneCh   chan struct{}
}

// Subscribe returns a subscription to theme updates.
func (e *Engine) Subscribe() *Subscription {
	s := &Subscription{
		updateCh: make(chan Update, 1),
		doneCh:   make(chan struct{}),
	}
	s.Updates = s.updateCh
	s.Done = s.doneCh

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(s.doneCh)
		return s
	}
	e.subs = append(e.subs, s)
	return s
}

// Unsubscribe stops delivery to s.
func (e *Engine) Unsubscribe(s *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, sub := range e.subs {
		if sub == s {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			close(s.doneCh)
			return
		}
	}
}

// send replaces any pending update. Callers hold the engine lock.
func (s *Subscription) send(u Update) {
	select {
	case s.updateCh <- u:
		return
	default:
	}
	select {
	case <-s.updateCh:
	default:
	}
	select {
	case s.updateCh <- u:
	default:
	}
}
