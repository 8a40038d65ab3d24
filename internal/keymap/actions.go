// Package keymap defines key bindings and action dispatch for the TUI.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit          Action = "quit"
	ActionSwitchFocus   Action = "switch_focus"
	ActionFocusPrompt   Action = "focus_prompt"
	ActionToggleHistory Action = "toggle_history"
	ActionHelp          Action = "help"
	ActionRefresh       Action = "refresh"

	// Generation
	ActionSubmitPrompt  Action = "submit_prompt"
	ActionCancelPrompt  Action = "cancel_prompt"
	ActionExtendQueue   Action = "extend_queue"
	ActionReusePrompt   Action = "reuse_prompt"
	ActionClearHistory  Action = "clear_history"
	ActionAddCandidate  Action = "add_candidate"
	ActionAddCandidates Action = "add_all_candidates"

	// Playback actions
	ActionPlayPause       Action = "play_pause"
	ActionStop            Action = "stop"
	ActionNextTrack       Action = "next_track"
	ActionPrevTrack       Action = "prev_track"
	ActionSeekForward     Action = "seek_forward"
	ActionSeekBack        Action = "seek_back"
	ActionSeekForwardLong Action = "seek_forward_long"
	ActionSeekBackLong    Action = "seek_back_long"
	ActionVolumeUp        Action = "volume_up"
	ActionVolumeDown      Action = "volume_down"
	ActionToggleMute      Action = "toggle_mute"

	// List navigation
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"

	// Contextual
	ActionSelect Action = "select" // enter - play/activate
	ActionDelete Action = "delete" // d/delete - remove from queue
)
