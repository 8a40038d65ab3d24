package app

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mixtape/internal/keymap"
)

const (
	seekStep     = 5 * time.Second
	seekStepLong = 15 * time.Second
	volumeStep   = 0.05

	// seekDebounce drops key-repeat seeks that arrive faster than this.
	seekDebounce = 150 * time.Millisecond
)

// keyResult is the outcome of a key handler.
type keyResult struct {
	handled bool
	cmd     tea.Cmd
}

var notHandled = keyResult{}

func handled(cmd tea.Cmd) keyResult {
	return keyResult{handled: true, cmd: cmd}
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	action := m.keys.Resolve(m.Focus.keyContext(), msg.String())

	if m.Focus == FocusPrompt {
		switch action { //nolint:exhaustive // prompt only handles its own actions
		case keymap.ActionSubmitPrompt:
			cmd := m.submitPrompt()
			return m, cmd
		case keymap.ActionCancelPrompt:
			m.setFocus(m.PrevFocus)
			return m, nil
		case keymap.ActionSwitchFocus:
			m.setFocus(m.nextFocus())
			return m, nil
		case keymap.ActionQuit:
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.Prompt, cmd = m.Prompt.Update(msg)
		return m, cmd
	}

	for _, h := range []func(keymap.Action) keyResult{
		m.handleGlobalKeys,
		m.handlePlaybackKeys,
		m.handleListKeys,
	} {
		if r := h(action); r.handled {
			return m, r.cmd
		}
	}
	return m, nil
}

// handleGlobalKeys handles quit, focus, history, help and queue actions.
func (m *Model) handleGlobalKeys(action keymap.Action) keyResult {
	switch action { //nolint:exhaustive // only handling global actions
	case keymap.ActionQuit:
		return handled(tea.Quit)
	case keymap.ActionSwitchFocus:
		m.setFocus(m.nextFocus())
		return handled(nil)
	case keymap.ActionFocusPrompt:
		m.setFocus(FocusPrompt)
		return handled(textinput.Blink)
	case keymap.ActionToggleHistory:
		m.ShowHistory = !m.ShowHistory
		switch {
		case m.ShowHistory:
			m.setFocus(FocusHistory)
			return handled(m.LoadHistoryCmd())
		case m.Focus == FocusHistory:
			m.setFocus(FocusCandidates)
		}
		return handled(nil)
	case keymap.ActionHelp:
		m.ShowHelp = true
		return handled(nil)
	case keymap.ActionRefresh:
		return handled(m.LoadQueueCmd())
	case keymap.ActionExtendQueue:
		return handled(m.ExtendQueueCmd())
	}
	return notHandled
}

// handlePlaybackKeys handles transport, seek and volume actions.
func (m *Model) handlePlaybackKeys(action keymap.Action) keyResult {
	pb := m.app.Playback
	switch action { //nolint:exhaustive // only handling playback actions
	case keymap.ActionPlayPause:
		return handled(m.ToggleCmd())
	case keymap.ActionStop:
		pb.Stop()
		m.Playback = pb.Snapshot()
		return handled(nil)
	case keymap.ActionNextTrack:
		return handled(m.skip(pb.Next))
	case keymap.ActionPrevTrack:
		return handled(m.skip(pb.Previous))
	case keymap.ActionSeekForward:
		m.seek(seekStep)
		return handled(nil)
	case keymap.ActionSeekBack:
		m.seek(-seekStep)
		return handled(nil)
	case keymap.ActionSeekForwardLong:
		m.seek(seekStepLong)
		return handled(nil)
	case keymap.ActionSeekBackLong:
		m.seek(-seekStepLong)
		return handled(nil)
	case keymap.ActionVolumeUp:
		m.app.SetVolume(m.app.Volume() + volumeStep)
		return handled(nil)
	case keymap.ActionVolumeDown:
		m.app.SetVolume(m.app.Volume() - volumeStep)
		return handled(nil)
	case keymap.ActionToggleMute:
		m.app.ToggleMute()
		return handled(nil)
	}
	return notHandled
}

// skip moves to another track, then resumes playback if it was running.
func (m *Model) skip(step func() error) tea.Cmd {
	wasPlaying := m.app.Playback.IsPlaying()
	if err := step(); err != nil {
		return m.setError(err.Error())
	}
	m.Playback = m.app.Playback.Snapshot()
	if wasPlaying {
		return m.ToggleCmd()
	}
	return nil
}

// seek moves the playhead, ignoring key repeats faster than seekDebounce.
func (m *Model) seek(delta time.Duration) {
	if time.Since(m.lastSeek) < seekDebounce {
		return
	}
	m.lastSeek = time.Now()
	m.app.Playback.SeekBy(delta)
	m.Playback = m.app.Playback.Snapshot()
}

// handleListKeys handles cursor movement and activation in the focused list.
func (m *Model) handleListKeys(action keymap.Action) keyResult {
	switch m.Focus {
	case FocusCandidates:
		return m.handleCandidateKeys(action)
	case FocusQueue:
		return m.handleQueueKeys(action)
	case FocusHistory:
		return m.handleHistoryKeys(action)
	case FocusPrompt:
	}
	return notHandled
}

func (m *Model) handleCandidateKeys(action keymap.Action) keyResult {
	switch action { //nolint:exhaustive // only handling candidate actions
	case keymap.ActionMoveDown:
		m.CandCursor = clampCursor(m.CandCursor+1, len(m.Candidates))
		return handled(nil)
	case keymap.ActionMoveUp:
		m.CandCursor = clampCursor(m.CandCursor-1, len(m.Candidates))
		return handled(nil)
	case keymap.ActionAddCandidate:
		if len(m.Candidates) == 0 {
			return handled(nil)
		}
		return handled(m.AddTrackCmd(m.Candidates[m.CandCursor]))
	case keymap.ActionAddCandidates:
		if len(m.Candidates) == 0 {
			return handled(nil)
		}
		return handled(m.AddTracksCmd(m.Candidates))
	}
	return notHandled
}

func (m *Model) handleQueueKeys(action keymap.Action) keyResult {
	switch action { //nolint:exhaustive // only handling queue actions
	case keymap.ActionMoveDown:
		m.QueueCursor = clampCursor(m.QueueCursor+1, len(m.Tracks))
		return handled(nil)
	case keymap.ActionMoveUp:
		m.QueueCursor = clampCursor(m.QueueCursor-1, len(m.Tracks))
		return handled(nil)
	case keymap.ActionJumpStart:
		m.QueueCursor = 0
		return handled(nil)
	case keymap.ActionJumpEnd:
		m.QueueCursor = clampCursor(len(m.Tracks)-1, len(m.Tracks))
		return handled(nil)
	case keymap.ActionSelect:
		if len(m.Tracks) == 0 {
			return handled(nil)
		}
		return handled(m.PlayIndexCmd(m.QueueCursor))
	case keymap.ActionDelete:
		if len(m.Tracks) == 0 {
			return handled(nil)
		}
		return handled(m.RemoveTrackCmd(m.Tracks[m.QueueCursor]))
	}
	return notHandled
}

func (m *Model) handleHistoryKeys(action keymap.Action) keyResult {
	switch action { //nolint:exhaustive // only handling history actions
	case keymap.ActionMoveDown:
		m.HistCursor = clampCursor(m.HistCursor+1, len(m.History))
		return handled(nil)
	case keymap.ActionMoveUp:
		m.HistCursor = clampCursor(m.HistCursor-1, len(m.History))
		return handled(nil)
	case keymap.ActionReusePrompt:
		if len(m.History) == 0 {
			return handled(nil)
		}
		m.Prompt.SetValue(m.History[m.HistCursor].Prompt)
		m.Prompt.CursorEnd()
		m.setFocus(FocusPrompt)
		return handled(nil)
	case keymap.ActionClearHistory:
		return handled(m.ClearHistoryCmd())
	}
	return notHandled
}
