package keymap

// Contexts a binding can belong to. Global and playback bindings apply
// everywhere except while typing a prompt.
const (
	ContextGlobal     = "global"
	ContextPlayback   = "playback"
	ContextPrompt     = "prompt"
	ContextCandidates = "candidates"
	ContextQueue      = "queue"
	ContextHistory    = "history"
)

// Binding maps keys to an action within a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string
}

// Bindings contains every key binding, in help order.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit application", ContextGlobal},
	{ActionSwitchFocus, []string{"tab"}, "Switch focus", ContextGlobal},
	{ActionFocusPrompt, []string{"/", "i"}, "Write a prompt", ContextGlobal},
	{ActionToggleHistory, []string{"H"}, "Prompt history", ContextGlobal},
	{ActionExtendQueue, []string{"ctrl+g"}, "Generate playlist from queue", ContextGlobal},
	{ActionRefresh, []string{"ctrl+r"}, "Reload queue", ContextGlobal},
	{ActionHelp, []string{"?"}, "Show help", ContextGlobal},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", ContextPlayback},
	{ActionStop, []string{"s"}, "Stop", ContextPlayback},
	{ActionNextTrack, []string{"n", "pgdown"}, "Next track", ContextPlayback},
	{ActionPrevTrack, []string{"p", "pgup"}, "Previous track", ContextPlayback},
	{ActionSeekBack, []string{"shift+left"}, "Seek -5s", ContextPlayback},
	{ActionSeekForward, []string{"shift+right"}, "Seek +5s", ContextPlayback},
	{ActionSeekBackLong, []string{"ctrl+left"}, "Seek -15s", ContextPlayback},
	{ActionSeekForwardLong, []string{"ctrl+right"}, "Seek +15s", ContextPlayback},
	{ActionVolumeUp, []string{"+", "="}, "Volume up", ContextPlayback},
	{ActionVolumeDown, []string{"-"}, "Volume down", ContextPlayback},
	{ActionToggleMute, []string{"m"}, "Mute", ContextPlayback},

	// Prompt input
	{ActionSubmitPrompt, []string{"enter"}, "Generate mixtape", ContextPrompt},
	{ActionCancelPrompt, []string{"esc"}, "Leave prompt", ContextPrompt},
	{ActionSwitchFocus, []string{"tab"}, "Switch focus", ContextPrompt},
	{ActionQuit, []string{"ctrl+c"}, "Quit application", ContextPrompt},

	// Candidate list
	{ActionMoveDown, []string{"j", "down"}, "Move down", ContextCandidates},
	{ActionMoveUp, []string{"k", "up"}, "Move up", ContextCandidates},
	{ActionAddCandidate, []string{"a", "enter"}, "Add to queue", ContextCandidates},
	{ActionAddCandidates, []string{"A"}, "Add all to queue", ContextCandidates},

	// Queue
	{ActionMoveDown, []string{"j", "down"}, "Move down", ContextQueue},
	{ActionMoveUp, []string{"k", "up"}, "Move up", ContextQueue},
	{ActionJumpStart, []string{"g", "home"}, "First track", ContextQueue},
	{ActionJumpEnd, []string{"G", "end"}, "Last track", ContextQueue},
	{ActionSelect, []string{"enter"}, "Play track", ContextQueue},
	{ActionDelete, []string{"d", "delete"}, "Remove from queue", ContextQueue},

	// History
	{ActionMoveDown, []string{"j", "down"}, "Move down", ContextHistory},
	{ActionMoveUp, []string{"k", "up"}, "Move up", ContextHistory},
	{ActionReusePrompt, []string{"enter"}, "Use prompt again", ContextHistory},
	{ActionClearHistory, []string{"D"}, "Clear history", ContextHistory},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
