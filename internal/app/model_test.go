package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/generate"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/queue"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	h := newHarness(t, false, nil)
	m := NewModel(h.app)
	t.Cleanup(m.Close)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_StartsInPrompt(t *testing.T) {
	m := newTestModel(t)
	if m.Focus != FocusPrompt {
		t.Errorf("Focus = %v, want FocusPrompt", m.Focus)
	}
	if !m.Prompt.Focused() {
		t.Error("prompt input not focused")
	}
}

func TestModel_TypingStaysInPrompt(t *testing.T) {
	m := newTestModel(t)
	for _, k := range []string{"q", "H", "?", "/"} {
		m, _ = update(t, m, runes(k))
	}
	if m.Focus != FocusPrompt {
		t.Errorf("Focus = %v, want FocusPrompt", m.Focus)
	}
	if got := m.Prompt.Value(); got != "qH?/" {
		t.Errorf("Prompt = %q, want %q", got, "qH?/")
	}
	if m.ShowHelp || m.ShowHistory {
		t.Error("typed keys triggered commands")
	}
}

func TestModel_EscAndSlash(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Focus != FocusQueue {
		t.Fatalf("after esc Focus = %v, want FocusQueue", m.Focus)
	}
	if m.Prompt.Focused() {
		t.Error("prompt still focused after esc")
	}

	m, _ = update(t, m, runes("/"))
	if m.Focus != FocusPrompt {
		t.Errorf("after / Focus = %v, want FocusPrompt", m.Focus)
	}
}

func TestModel_TabCycles(t *testing.T) {
	tests := []struct {
		name        string
		showHistory bool
		want        []Focus
	}{
		{"candidates", false, []Focus{FocusCandidates, FocusQueue, FocusPrompt}},
		{"history", true, []Focus{FocusHistory, FocusQueue, FocusPrompt}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.ShowHistory = tt.showHistory
			for i, want := range tt.want {
				m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
				if m.Focus != want {
					t.Fatalf("tab %d: Focus = %v, want %v", i+1, m.Focus, want)
				}
			}
		})
	}
}

func TestModel_SubmitEmptyPrompt(t *testing.T) {
	m := newTestModel(t)
	m.Prompt.SetValue("   ")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.MessageIsError {
		t.Error("MessageIsError = false")
	}
	if m.Message != "prompt must not be empty" {
		t.Errorf("Message = %q", m.Message)
	}
}

func TestModel_ToggleHistory(t *testing.T) {
	m := newTestModel(t)
	m.setFocus(FocusQueue)

	m, cmd := update(t, m, runes("H"))
	if !m.ShowHistory || m.Focus != FocusHistory {
		t.Fatalf("ShowHistory = %v, Focus = %v", m.ShowHistory, m.Focus)
	}
	if cmd == nil {
		t.Error("opening history should reload it")
	}

	m, _ = update(t, m, runes("H"))
	if m.ShowHistory {
		t.Error("history still shown")
	}
	if m.Focus != FocusCandidates {
		t.Errorf("Focus = %v, want FocusCandidates", m.Focus)
	}
}

func TestModel_HelpDismissedByAnyKey(t *testing.T) {
	m := newTestModel(t)
	m.setFocus(FocusQueue)

	m, _ = update(t, m, runes("?"))
	if !m.ShowHelp {
		t.Fatal("help not shown")
	}
	m, cmd := update(t, m, runes("q"))
	if m.ShowHelp {
		t.Error("help still shown")
	}
	if cmd != nil {
		t.Error("dismissing help should not run the key's action")
	}
}

func TestModel_QueueChangeClampsCursor(t *testing.T) {
	m := newTestModel(t)
	m.QueueCursor = 5

	tracks := []mixtape.Track{{ID: "a"}, {ID: "b"}}
	m, cmd := update(t, m, QueueChangedMsg(queue.Change{Tracks: tracks, Version: 1}))
	if len(m.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(m.Tracks))
	}
	if m.QueueCursor != 1 {
		t.Errorf("QueueCursor = %d, want 1", m.QueueCursor)
	}
	if cmd == nil {
		t.Error("queue watch not renewed")
	}
	if !m.queued("b") || m.queued("z") {
		t.Error("queued() disagrees with Tracks")
	}
}

func TestModel_GenerationSuccess(t *testing.T) {
	m := newTestModel(t)
	m.Prompt.SetValue("rainy sunday")

	candidates := []mixtape.Track{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	m, _ = update(t, m, GenerationMsg(generate.Event{
		Kind:  generate.KindPrompt,
		Phase: generate.PhaseSucceeded,
		Status: generate.Status{
			Prompt:     "rainy sunday",
			Analysis:   &mixtape.AnalysisResult{Mood: "Calm"},
			Candidates: candidates,
		},
	}))

	if m.Focus != FocusCandidates {
		t.Errorf("Focus = %v, want FocusCandidates", m.Focus)
	}
	if len(m.Candidates) != 3 || m.CandCursor != 0 {
		t.Errorf("Candidates = %d, cursor = %d", len(m.Candidates), m.CandCursor)
	}
	if m.Prompt.Value() != "" {
		t.Errorf("prompt not cleared: %q", m.Prompt.Value())
	}
	if m.Message != "3 songs found" {
		t.Errorf("Message = %q", m.Message)
	}
}

func TestModel_GenerationFailureShowsMessage(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, GenerationMsg(generate.Event{
		Kind:   generate.KindPrompt,
		Phase:  generate.PhaseFailed,
		Status: generate.Status{Message: "Inference backend unavailable"},
	}))
	if !m.MessageIsError || m.Message != "Inference backend unavailable" {
		t.Errorf("Message = %q (error %v)", m.Message, m.MessageIsError)
	}
}

func TestModel_OpResult(t *testing.T) {
	tests := []struct {
		name    string
		msg     OpResultMsg
		want    string
		isError bool
	}{
		{
			name:    "unauthenticated",
			msg:     OpResultMsg{Op: errmsg.OpQueueLoad, Err: mixtape.ErrUnauthenticated},
			want:    "Please log in first (run: mixtape login)",
			isError: true,
		},
		{
			name:    "duplicate",
			msg:     OpResultMsg{Op: errmsg.OpQueueAdd, Err: mixtape.ErrDuplicateTrack},
			want:    "Song already in mixtape",
			isError: true,
		},
		{
			name: "added",
			msg:  OpResultMsg{Op: errmsg.OpQueueAdd, Context: "Blue in Green"},
			want: "Added Blue in Green",
		},
		{
			name:    "pending generation",
			msg:     OpResultMsg{Op: errmsg.OpGenerateMixtape, Err: mixtape.ErrGenerationPending},
			want:    "A generation is already running",
			isError: true,
		},
		{
			name: "generation failure is reported by the workflow",
			msg:  OpResultMsg{Op: errmsg.OpGenerateMixtape, Err: &mixtape.NetworkError{Op: "generate", Status: 500}},
			want: "",
		},
		{
			name: "no preview",
			msg: OpResultMsg{Op: errmsg.OpPlaybackStart, Err: &mixtape.PlaybackUnavailableError{
				EmbedURL: "https://open.spotify.com/embed/track/abc",
			}},
			want:    "Preview not available for this track: https://open.spotify.com/embed/track/abc",
			isError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m, _ = update(t, m, tt.msg)
			if m.Message != tt.want {
				t.Errorf("Message = %q, want %q", m.Message, tt.want)
			}
			if tt.want != "" && m.MessageIsError != tt.isError {
				t.Errorf("MessageIsError = %v, want %v", m.MessageIsError, tt.isError)
			}
		})
	}
}

func TestModel_ClearMessageIgnoresStaleVersion(t *testing.T) {
	m := newTestModel(t)
	_ = m.setInfo("first")
	stale := m.messageVersion
	_ = m.setInfo("second")

	m, _ = update(t, m, ClearMessageMsg{Version: stale})
	if m.Message != "second" {
		t.Fatalf("Message = %q, want second", m.Message)
	}
	m, _ = update(t, m, ClearMessageMsg{Version: m.messageVersion})
	if m.Message != "" {
		t.Errorf("Message = %q, want empty", m.Message)
	}
}

func TestModel_CandidateKeys(t *testing.T) {
	m := newTestModel(t)
	m.Candidates = []mixtape.Track{{ID: "x"}, {ID: "y"}}
	m.setFocus(FocusCandidates)

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, runes("j"))
	if m.CandCursor != 1 {
		t.Errorf("CandCursor = %d, want 1", m.CandCursor)
	}
	m, _ = update(t, m, runes("k"))
	if m.CandCursor != 0 {
		t.Errorf("CandCursor = %d, want 0", m.CandCursor)
	}
	if _, cmd := update(t, m, runes("a")); cmd == nil {
		t.Error("add should return a command")
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "" {
		t.Errorf("View before size = %q, want empty", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Tracks = []mixtape.Track{{ID: "a", Title: "So What", Artist: "Miles Davis"}}
	m.Candidates = []mixtape.Track{
		{ID: "a", Title: "So What", Artist: "Miles Davis"},
		{ID: "b", Title: "Naima", Artist: "John Coltrane"},
	}
	view := m.View()

	for _, want := range []string{"mixtape", "Mixtape (1)", "So What - Miles Davis", "Naima - John Coltrane", "not logged in"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if n := strings.Count(view, "\n") + 1; n != 30 {
		t.Errorf("view has %d lines, want 30", n)
	}
	if !strings.Contains(view, "✓ So What") {
		t.Error("queued candidate not marked")
	}
}
