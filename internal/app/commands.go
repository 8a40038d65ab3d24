package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/generate"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/queue"
	"github.com/llehouerou/mixtape/internal/theme"
)

const (
	tickInterval   = 250 * time.Millisecond
	messageTimeout = 5 * time.Second
	historyLimit   = 50
)

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// ClearMessageCmd hides the status message after messageTimeout.
func ClearMessageCmd(version int) tea.Cmd {
	return tea.Tick(messageTimeout, func(_ time.Time) tea.Msg {
		return ClearMessageMsg{Version: version}
	})
}

// waitForChannel creates a command that waits for a value from a channel
// and converts it to a message. A closed channel or done ends the watch.
func waitForChannel[T any](ch <-chan T, done <-chan struct{}, toMsg func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case v, ok := <-ch:
			if !ok {
				return nil
			}
			return toMsg(v)
		case <-done:
			return nil
		}
	}
}

// WatchQueue waits for the next queue change.
func WatchQueue(sub *queue.Subscription) tea.Cmd {
	return waitForChannel(sub.Changed, sub.Done, func(c queue.Change) tea.Msg {
		return QueueChangedMsg(c)
	})
}

// WatchTheme waits for the next theme update.
func WatchTheme(sub *theme.Subscription) tea.Cmd {
	return waitForChannel(sub.Updates, sub.Done, func(u theme.Update) tea.Msg {
		return ThemeMsg(u)
	})
}

// WatchGeneration waits for the next workflow event.
func WatchGeneration(sub *generate.Subscription) tea.Cmd {
	return waitForChannel(sub.Events, sub.Done, func(e generate.Event) tea.Msg {
		return GenerationMsg(e)
	})
}

// WatchPlayback waits for the next controller event on any channel.
func WatchPlayback(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return PlaybackStateMsg(e)
		case e := <-sub.TrackChanged:
			return TrackChangedMsg(e)
		case e := <-sub.PlayingChanged:
			return PlayingChangedMsg(e)
		case e := <-sub.Error:
			return PlaybackErrorMsg(e)
		case <-sub.Done:
			return nil
		}
	}
}

func (m Model) runOp(op errmsg.Op, label string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.app.ctx
	return func() tea.Msg {
		return OpResultMsg{Op: op, Context: label, Err: fn(ctx)}
	}
}

// LoadQueueCmd fetches the queue from the store.
func (m Model) LoadQueueCmd() tea.Cmd {
	return m.runOp(errmsg.OpQueueLoad, "", m.app.Queue.Load)
}

// AddTrackCmd adds t to the queue.
func (m Model) AddTrackCmd(t mixtape.Track) tea.Cmd {
	return m.runOp(errmsg.OpQueueAdd, t.Title, func(ctx context.Context) error {
		return m.app.Queue.Add(ctx, t)
	})
}

// AddTracksCmd adds tracks one by one, skipping those already queued.
// It stops at the first failure.
func (m Model) AddTracksCmd(tracks []mixtape.Track) tea.Cmd {
	return m.runOp(errmsg.OpQueueAdd, "", func(ctx context.Context) error {
		for _, t := range tracks {
			if m.app.Queue.Contains(t.ID) {
				continue
			}
			if err := m.app.Queue.Add(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveTrackCmd removes the track with id from the queue.
func (m Model) RemoveTrackCmd(t mixtape.Track) tea.Cmd {
	return m.runOp(errmsg.OpQueueRemove, t.Title, func(ctx context.Context) error {
		return m.app.Queue.Remove(ctx, t.ID)
	})
}

// GenerateCmd submits prompt to the generation workflow.
func (m Model) GenerateCmd(prompt string) tea.Cmd {
	return m.runOp(errmsg.OpGenerateMixtape, "", func(ctx context.Context) error {
		_, err := m.app.Generate.FromPrompt(ctx, prompt)
		return err
	})
}

// ExtendQueueCmd generates a playlist from the current queue.
func (m Model) ExtendQueueCmd() tea.Cmd {
	return m.runOp(errmsg.OpGeneratePlaylist, "", func(ctx context.Context) error {
		_, err := m.app.Generate.FromQueue(ctx)
		return err
	})
}

// PlayIndexCmd selects track i and plays it.
func (m Model) PlayIndexCmd(i int) tea.Cmd {
	return m.runOp(errmsg.OpPlaybackStart, "", func(ctx context.Context) error {
		return m.app.PlayIndex(ctx, i)
	})
}

// ToggleCmd plays or pauses.
func (m Model) ToggleCmd() tea.Cmd {
	return m.runOp(errmsg.OpPlaybackStart, "", m.app.Playback.Toggle)
}

// LoadHistoryCmd reads the prompt history.
func (m Model) LoadHistoryCmd() tea.Cmd {
	st := m.app.State
	return func() tea.Msg {
		entries, err := st.History(historyLimit)
		return HistoryMsg{Entries: entries, Err: err}
	}
}

// ClearHistoryCmd deletes the prompt history.
func (m Model) ClearHistoryCmd() tea.Cmd {
	st := m.app.State
	return func() tea.Msg {
		if err := st.ClearHistory(); err != nil {
			return OpResultMsg{Op: errmsg.OpHistoryClear, Err: err}
		}
		return HistoryMsg{}
	}
}
