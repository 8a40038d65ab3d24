package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/generate"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/playback"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Prompt.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case QueueChangedMsg:
		m.Tracks = msg.Tracks
		m.QueueCursor = clampCursor(m.QueueCursor, len(m.Tracks))
		m.Playback = m.app.Playback.Snapshot()
		return m, WatchQueue(m.subs.queue)

	case TrackChangedMsg:
		m.Playback = m.app.Playback.Snapshot()
		if msg.Current != nil {
			m.QueueCursor = clampCursor(msg.Index, len(m.Tracks))
		}
		return m, WatchPlayback(m.subs.playback)

	case PlaybackStateMsg:
		m.Playback = m.app.Playback.Snapshot()
		cmd := m.startTicking()
		return m, tea.Batch(WatchPlayback(m.subs.playback), cmd)

	case PlayingChangedMsg:
		m.Playback = m.app.Playback.Snapshot()
		cmd := m.startTicking()
		return m, tea.Batch(WatchPlayback(m.subs.playback), cmd)

	case PlaybackErrorMsg:
		m.Playback = m.app.Playback.Snapshot()
		cmd := m.setError(errmsg.Friendly(errmsg.OpPlaybackStart, msg.Err) + embedHint(msg.Err))
		return m, tea.Batch(WatchPlayback(m.subs.playback), cmd)

	case ThemeMsg:
		m.Theme = msg.State
		cmd := m.startTicking()
		return m, tea.Batch(WatchTheme(m.subs.theme), cmd)

	case GenerationMsg:
		return m.handleGeneration(msg)

	case OpResultMsg:
		return m.handleOpResult(msg)

	case HistoryMsg:
		if msg.Err != nil {
			cmd := m.setError(errmsg.Format(errmsg.OpHistoryLoad, msg.Err))
			return m, cmd
		}
		m.History = msg.Entries
		m.HistCursor = clampCursor(m.HistCursor, len(m.History))
		return m, nil

	case TickMsg:
		m.ticking = false
		m.Playback = m.app.Playback.Snapshot()
		if m.Theme.Animating {
			m.Frame++
		}
		cmd := m.startTicking()
		return m, cmd

	case spinner.TickMsg:
		if !m.Generation.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case ClearMessageMsg:
		if msg.Version == m.messageVersion {
			m.Message = ""
			m.MessageIsError = false
		}
		return m, nil
	}

	// Forward anything else (cursor blink) to the prompt input.
	var cmd tea.Cmd
	m.Prompt, cmd = m.Prompt.Update(msg)
	return m, cmd
}

// startTicking schedules a tick while something on screen moves.
func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	moving := m.Playback.State == playback.StatePlaying ||
		m.Playback.State == playback.StateLoading ||
		m.Theme.Animating
	if !moving {
		return nil
	}
	m.ticking = true
	return TickCmd()
}

func (m Model) handleGeneration(msg GenerationMsg) (tea.Model, tea.Cmd) {
	m.Generation = msg.Status
	cmds := []tea.Cmd{WatchGeneration(m.subs.generate)}

	switch msg.Phase {
	case generate.PhaseStarted:
		cmds = append(cmds, m.Spinner.Tick)
		if msg.Kind == generate.KindQueue {
			cmds = append(cmds, m.setInfo("Generating playlist from your queue..."))
		}
	case generate.PhaseSucceeded:
		switch msg.Kind {
		case generate.KindPrompt:
			m.Candidates = msg.Status.Candidates
			m.CandCursor = 0
			m.Prompt.Reset()
			m.setFocus(FocusCandidates)
			m.ShowHistory = false
			cmds = append(cmds,
				m.setInfo(fmt.Sprintf("%d songs found", len(m.Candidates))),
				m.LoadHistoryCmd(),
			)
		case generate.KindQueue:
			if b := msg.Status.LastBatch; b != nil {
				cmds = append(cmds, m.setInfo(fmt.Sprintf("%d songs added, %d not found", len(b.Added), len(b.NotFound))))
			}
		}
	case generate.PhaseFailed, generate.PhaseRejected:
		if msg.Status.Message != "" {
			cmds = append(cmds, m.setError(msg.Status.Message))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleOpResult(msg OpResultMsg) (tea.Model, tea.Cmd) {
	m.Playback = m.app.Playback.Snapshot()
	if msg.Err == nil {
		switch msg.Op { //nolint:exhaustive // only operations with a confirmation
		case errmsg.OpQueueAdd:
			if msg.Context != "" {
				cmd := m.setInfo("Added " + msg.Context)
				return m, cmd
			}
			cmd := m.setInfo("Added to mixtape")
			return m, cmd
		case errmsg.OpQueueRemove:
			cmd := m.setInfo("Removed " + msg.Context)
			return m, cmd
		}
		cmd := m.startTicking()
		return m, cmd
	}

	// Generation failures already arrived as workflow events.
	if msg.Op == errmsg.OpGenerateMixtape || msg.Op == errmsg.OpGeneratePlaylist {
		if errors.Is(msg.Err, mixtape.ErrGenerationPending) {
			cmd := m.setError(errmsg.Friendly(msg.Op, msg.Err))
			return m, cmd
		}
		return m, nil
	}

	text := errmsg.Friendly(msg.Op, msg.Err)
	if errors.Is(msg.Err, mixtape.ErrUnauthenticated) {
		text += " (run: mixtape login)"
	}
	cmd := m.setError(text + embedHint(msg.Err))
	return m, cmd
}

// embedHint points at the external player when a track has no preview.
func embedHint(err error) string {
	var pu *mixtape.PlaybackUnavailableError
	if errors.As(err, &pu) && pu.EmbedURL != "" {
		return ": " + pu.EmbedURL
	}
	return ""
}

func (m *Model) setInfo(text string) tea.Cmd {
	return m.setMessage(text, false)
}

func (m *Model) setError(text string) tea.Cmd {
	return m.setMessage(text, true)
}

func (m *Model) setMessage(text string, isError bool) tea.Cmd {
	m.messageVersion++
	m.Message = text
	m.MessageIsError = isError
	return ClearMessageCmd(m.messageVersion)
}

func (m *Model) setFocus(f Focus) {
	if f == m.Focus {
		return
	}
	if m.Focus == FocusPrompt {
		m.Prompt.Blur()
	}
	if f == FocusPrompt {
		m.PrevFocus = m.Focus
		m.Prompt.Focus()
	}
	m.Focus = f
}

// nextFocus cycles through the visible panels.
func (m Model) nextFocus() Focus {
	order := []Focus{FocusPrompt, FocusCandidates, FocusQueue}
	if m.ShowHistory {
		order[1] = FocusHistory
	}
	for i, f := range order {
		if f == m.Focus {
			return order[(i+1)%len(order)]
		}
	}
	return FocusQueue
}

func (m *Model) submitPrompt() tea.Cmd {
	text := strings.TrimSpace(m.Prompt.Value())
	if text == "" {
		return m.setError(mixtape.UserMessage(mixtape.ErrEmptyPrompt, "Please enter a prompt"))
	}
	return m.GenerateCmd(text)
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	return max(0, min(cursor, n-1))
}
