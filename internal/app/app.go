// Package app wires the mixtape components together and hosts the TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/api"
	"github.com/llehouerou/mixtape/internal/artwork"
	"github.com/llehouerou/mixtape/internal/config"
	"github.com/llehouerou/mixtape/internal/generate"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/mpris"
	"github.com/llehouerou/mixtape/internal/notify"
	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/player"
	"github.com/llehouerou/mixtape/internal/queue"
	"github.com/llehouerou/mixtape/internal/session"
	"github.com/llehouerou/mixtape/internal/state"
	"github.com/llehouerou/mixtape/internal/theme"
)

// Backend is the remote side: authentication, the queue store and the
// inference service.
type Backend interface {
	queue.Store
	generate.Client
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Signup(ctx context.Context, username, email, password string) (*session.Session, error)
	Me(ctx context.Context, sess *session.Session) (*api.User, error)
}

// Deps are the collaborators an App is assembled from. New fills them
// from configuration; tests pass doubles.
type Deps struct {
	State    state.Interface
	Backend  Backend
	Media    player.Interface
	Sampler  theme.Sampler
	Notifier notify.Notifier
	Icons    *notify.IconCache
	// MPRIS starts the media-key adapter.
	MPRIS bool
}

// volumeControl is implemented by media elements with a mixer.
type volumeControl interface {
	Volume() float64
	SetVolume(level float64)
	Muted() bool
	SetMuted(muted bool)
}

// App owns every long-lived component and the event pump between them:
// queue changes feed the controller, controller changes feed the theme and
// notifications, and finished generations feed the theme.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	State    state.Interface
	Sessions *session.Holder
	Backend  Backend
	Queue    *queue.Manager
	Media    player.Interface
	Playback *playback.Controller
	Theme    *theme.Engine
	Generate *generate.Workflow
	Announce *notify.Announcer

	mpris *mpris.Adapter

	mu        sync.Mutex
	announced string

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New builds an App from configuration for interactive use: desktop
// notifications and media keys follow the config.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	return build(cfg, logger, true)
}

// NewHeadless builds an App for one-shot commands. It never sends
// notifications nor claims the media-key bus name.
func NewHeadless(cfg *config.Config, logger *zap.Logger) (*App, error) {
	return build(cfg, logger, false)
}

func build(cfg *config.Config, logger *zap.Logger, interactive bool) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	st, err := state.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}

	notifier := notify.Disabled()
	var icons *notify.IconCache
	if interactive && cfg.NotificationsEnabled() {
		if notifier, err = notify.New(); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("notifications: %w", err)
		}
		icons = notify.NewIconCache(cfg.IconDir(), nil)
	}

	tc := cfg.GetThemeConfig()
	deps := Deps{
		State:    st,
		Backend:  api.New(cfg.BaseURL(), cfg.APITimeout(), logger),
		Media:    player.New(nil, cfg.UpdateInterval(), logger),
		Sampler:  artwork.NewSampler(&http.Client{Timeout: tc.SampleTimeoutDuration()}, tc.SampleSize, st, logger.Named("artwork")),
		Notifier: notifier,
		Icons:    icons,
		MPRIS:    interactive && cfg.MPRISEnabled(),
	}
	return Assemble(cfg, deps, logger)
}

// Assemble wires deps together and starts the event pump.
func Assemble(cfg *config.Config, deps Deps, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Disabled()
	}
	tc := cfg.GetThemeConfig()

	a := &App{
		Config:  cfg,
		Logger:  logger,
		State:   deps.State,
		Backend: deps.Backend,
		Media:   deps.Media,
	}

	a.Sessions = session.NewHolder(deps.State, logger)
	if err := a.Sessions.Restore(); err != nil {
		logger.Warn("session not restored", zap.Error(err))
	}

	a.Queue = queue.NewManager(deps.Backend, a.Sessions, logger)
	a.Playback = playback.New(deps.Media, logger)
	a.Theme = theme.NewEngine(deps.Sampler, theme.Options{
		Debounce:      tc.DebounceDuration(),
		SampleTimeout: tc.SampleTimeoutDuration(),
		Logger:        logger,
	})
	a.Generate = generate.New(deps.Backend, a.Queue, a.Sessions, generate.Options{
		MinQueueSize: cfg.MinQueueSize(),
		History:      deps.State,
		Logger:       logger,
	})
	a.Announce = notify.NewAnnouncer(deps.Notifier, deps.Icons, logger.Named("notify"))

	a.restorePrefs()

	a.ctx, a.cancel = context.WithCancel(context.Background())
	qs := a.Queue.Subscribe()
	ps := a.Playback.Subscribe()
	gs := a.Generate.Subscribe()
	a.wg.Add(1)
	go a.pump(qs, ps, gs)

	if deps.MPRIS {
		adapter, err := mpris.New(a.Playback, a)
		if err != nil {
			logger.Warn("mpris unavailable", zap.Error(err))
		} else {
			a.mpris = adapter
		}
	}

	return a, nil
}

func (a *App) pump(qs *queue.Subscription, ps *playback.Subscription, gs *generate.Subscription) {
	defer a.wg.Done()
	for {
		select {
		case <-a.ctx.Done():
			return
		case c := <-qs.Changed:
			a.Playback.SetQueue(c.Tracks)
		case e := <-ps.TrackChanged:
			a.Theme.SetTrack(e.Current)
			a.mu.Lock()
			// Events arrive on separate channels, so the announcement for
			// this very track may already have gone out.
			if e.Current == nil || e.Current.ID != a.announced {
				a.announced = ""
			}
			a.mu.Unlock()
		case e := <-ps.PlayingChanged:
			a.Theme.SetPlaying(e.Playing)
			if e.Playing {
				a.announceCurrent()
			}
		case e := <-ps.StateChanged:
			a.Logger.Debug("playback state",
				zap.Stringer("from", e.Previous), zap.Stringer("to", e.Current))
			if e.Current == playback.StateIdle {
				a.Announce.Dismiss()
			}
		case e := <-ps.Error:
			a.Logger.Warn("playback failed", zap.Error(e.Err))
		case e := <-gs.Events:
			a.onGeneration(e)
		}
	}
}

// announceCurrent sends a now-playing notification once per track change.
// Resuming after a pause does not announce again.
func (a *App) announceCurrent() {
	t := a.Playback.CurrentTrack()
	if t == nil {
		return
	}
	a.mu.Lock()
	if a.announced == t.ID {
		a.mu.Unlock()
		return
	}
	a.announced = t.ID
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Announce.TrackStarted(a.ctx, *t)
	}()
}

func (a *App) onGeneration(e generate.Event) {
	switch e.Phase {
	case generate.PhaseSucceeded:
		switch e.Kind {
		case generate.KindPrompt:
			a.Theme.SetAnalysis(e.Status.Analysis)
			gen := &mixtape.Generation{Prompt: e.Status.Prompt, Candidates: e.Status.Candidates}
			if e.Status.Analysis != nil {
				gen.Analysis = *e.Status.Analysis
			}
			a.Announce.Send(notify.MixtapeReady(gen))
		case generate.KindQueue:
			if e.Status.LastBatch != nil {
				a.Announce.Send(notify.PlaylistExtended(e.Status.LastBatch))
			}
		}
	case generate.PhaseFailed:
		a.Logger.Info("generation failed", zap.Stringer("kind", e.Kind), zap.Error(e.Err))
	case generate.PhaseStarted, generate.PhaseRejected:
	}
}

// Login authenticates, stores the session and loads the queue.
func (a *App) Login(ctx context.Context, email, password string) error {
	sess, err := a.Backend.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return a.startSession(ctx, sess)
}

// Signup creates an account and logs in with it.
func (a *App) Signup(ctx context.Context, username, email, password string) error {
	sess, err := a.Backend.Signup(ctx, username, email, password)
	if err != nil {
		return err
	}
	return a.startSession(ctx, sess)
}

func (a *App) startSession(ctx context.Context, sess *session.Session) error {
	if err := a.Sessions.Set(sess); err != nil {
		a.Logger.Warn("session not persisted", zap.Error(err))
	}
	return a.Queue.Load(ctx)
}

// Logout drops the session, the local queue and playback, and takes down
// the now-playing notification.
func (a *App) Logout() error {
	a.Playback.Stop()
	a.Queue.Clear()
	a.Announce.Dismiss()
	return a.Sessions.Clear()
}

// Authenticated reports whether a session is held.
func (a *App) Authenticated() bool {
	return a.Sessions.Current() != nil
}

// PlayIndex selects track i of the queue and starts it. The controller is
// brought up to date first since the pump may not have delivered the last
// queue change yet.
func (a *App) PlayIndex(ctx context.Context, i int) error {
	a.Playback.SetQueue(a.Queue.Tracks())
	if err := a.Playback.Select(i); err != nil {
		return err
	}
	return a.Playback.Play(ctx)
}

// History returns the most recent prompts.
func (a *App) History(limit int) ([]mixtape.HistoryEntry, error) {
	return a.State.History(limit)
}

// Volume returns the media volume, or 1 when the media has no mixer.
func (a *App) Volume() float64 {
	if vc, ok := a.Media.(volumeControl); ok {
		return vc.Volume()
	}
	return 1
}

// Muted reports whether the media is muted.
func (a *App) Muted() bool {
	if vc, ok := a.Media.(volumeControl); ok {
		return vc.Muted()
	}
	return false
}

// SetVolume changes and persists the volume.
func (a *App) SetVolume(level float64) {
	vc, ok := a.Media.(volumeControl)
	if !ok {
		return
	}
	vc.SetVolume(level)
	a.savePrefs(vc)
}

// ToggleMute flips and persists the muted flag.
func (a *App) ToggleMute() {
	vc, ok := a.Media.(volumeControl)
	if !ok {
		return
	}
	vc.SetMuted(!vc.Muted())
	a.savePrefs(vc)
}

func (a *App) savePrefs(vc volumeControl) {
	a.State.SavePrefs(state.Prefs{Volume: vc.Volume(), Muted: vc.Muted()})
}

func (a *App) restorePrefs() {
	vc, ok := a.Media.(volumeControl)
	if !ok {
		return
	}
	prefs, err := a.State.GetPrefs()
	if err != nil {
		a.Logger.Warn("player preferences not restored", zap.Error(err))
		return
	}
	vc.SetVolume(prefs.Volume)
	vc.SetMuted(prefs.Muted)
}

// Close stops the pump and releases every component. It is safe to call
// more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.mpris != nil {
			errs = append(errs, a.mpris.Close())
		}
		a.cancel()
		a.wg.Wait()

		a.Generate.Close()
		a.Playback.Close()
		a.Theme.Close()
		a.Queue.Close()
		errs = append(errs, a.Media.Close(), a.State.Close())
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
