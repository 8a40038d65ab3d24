package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

// Announcer sends now-playing notifications, each replacing the previous
// one, and one-off workflow notifications.
type Announcer struct {
	notifier Notifier
	icons    *IconCache
	logger   *zap.Logger

	mu     sync.Mutex
	lastID uint32
}

// NewAnnouncer wraps notifier. icons may be nil.
func NewAnnouncer(notifier Notifier, icons *IconCache, logger *zap.Logger) *Announcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Announcer{notifier: notifier, icons: icons, logger: logger}
}

// TrackStarted announces t.
func (a *Announcer) TrackStarted(ctx context.Context, t mixtape.Track) {
	icon := ""
	if a.icons != nil && t.HasArtwork() {
		icon = a.icons.Path(ctx, t.AlbumArtURL)
	}
	n := NowPlaying(t, icon)

	a.mu.Lock()
	defer a.mu.Unlock()
	n.ReplacesID = a.lastID
	id, err := a.notifier.Notify(n)
	if err != nil {
		a.logger.Debug("now playing notification failed", zap.Error(err))
		return
	}
	a.lastID = id
}

// Dismiss closes the now-playing notification, if one is shown.
func (a *Announcer) Dismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastID == 0 {
		return
	}
	if err := a.notifier.Close(a.lastID); err != nil {
		a.logger.Debug("closing now playing notification", zap.Error(err))
	}
	a.lastID = 0
}

// Current returns the id of the shown now-playing notification, or 0.
func (a *Announcer) Current() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastID
}

// Send delivers a one-off notification.
func (a *Announcer) Send(n Notification) {
	if _, err := a.notifier.Notify(n); err != nil {
		a.logger.Debug("notification failed", zap.String("title", n.Title), zap.Error(err))
	}
}
