package app

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mixtape/internal/generate"
	"github.com/llehouerou/mixtape/internal/keymap"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/queue"
	"github.com/llehouerou/mixtape/internal/theme"
)

// Focus is the panel receiving keys.
type Focus int

const (
	FocusPrompt Focus = iota
	FocusCandidates
	FocusQueue
	FocusHistory
)

// keyContext returns the keymap context for the focused panel.
func (f Focus) keyContext() string {
	switch f {
	case FocusPrompt:
		return keymap.ContextPrompt
	case FocusCandidates:
		return keymap.ContextCandidates
	case FocusHistory:
		return keymap.ContextHistory
	default:
		return keymap.ContextQueue
	}
}

// subscriptions are the component feeds the model listens to.
type subscriptions struct {
	queue    *queue.Subscription
	playback *playback.Subscription
	theme    *theme.Subscription
	generate *generate.Subscription
}

// Model is the root TUI model.
type Model struct {
	app  *App
	keys *keymap.Resolver
	subs subscriptions

	Prompt  textinput.Model
	Spinner spinner.Model
	Focus   Focus
	// PrevFocus is restored when leaving the prompt.
	PrevFocus   Focus
	ShowHistory bool
	ShowHelp    bool

	Tracks      []mixtape.Track
	QueueCursor int
	Candidates  []mixtape.Track
	CandCursor  int
	History     []mixtape.HistoryEntry
	HistCursor  int

	Generation generate.Status
	Playback   playback.Snapshot
	Theme      theme.State
	Frame      int
	ticking    bool
	lastSeek   time.Time

	Message        string
	MessageIsError bool
	messageVersion int

	Width  int
	Height int
}

// NewModel creates the TUI model over a running App.
func NewModel(a *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe a mood, a moment, a memory..."
	ti.CharLimit = 500
	ti.Prompt = "› "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		app:  a,
		keys: keymap.NewResolver(keymap.Bindings),
		subs: subscriptions{
			queue:    a.Queue.Subscribe(),
			playback: a.Playback.Subscribe(),
			theme:    a.Theme.Subscribe(),
			generate: a.Generate.Subscribe(),
		},
		Prompt:     ti,
		Spinner:    sp,
		Focus:      FocusPrompt,
		PrevFocus:  FocusQueue,
		Tracks:     a.Queue.Tracks(),
		Generation: a.Generate.Status(),
		Playback:   a.Playback.Snapshot(),
		Theme:      a.Theme.State(),
	}
	m.Candidates = m.Generation.Candidates
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.watchAll(),
		m.LoadHistoryCmd(),
	}
	if m.app.Authenticated() {
		cmds = append(cmds, m.LoadQueueCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) watchAll() tea.Cmd {
	return tea.Batch(
		WatchQueue(m.subs.queue),
		WatchPlayback(m.subs.playback),
		WatchTheme(m.subs.theme),
		WatchGeneration(m.subs.generate),
	)
}

// Close releases the model's subscriptions.
func (m Model) Close() {
	m.app.Queue.Unsubscribe(m.subs.queue)
	m.app.Playback.Unsubscribe(m.subs.playback)
	m.app.Theme.Unsubscribe(m.subs.theme)
	m.app.Generate.Unsubscribe(m.subs.generate)
}

// queued reports whether the track with id is in the queue snapshot.
func (m Model) queued(id string) bool {
	for _, t := range m.Tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}
