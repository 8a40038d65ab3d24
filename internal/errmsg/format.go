// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Queue operations
	OpQueueLoad   Op = "load queue"
	OpQueueAdd    Op = "add to queue"
	OpQueueRemove Op = "remove from queue"

	// Generation
	OpGenerateMixtape  Op = "generate mixtape"
	OpGeneratePlaylist Op = "generate playlist"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"

	// Account
	OpLogin   Op = "log in"
	OpSignup  Op = "sign up"
	OpSession Op = "restore session"

	// History
	OpHistoryLoad  Op = "load history"
	OpHistoryClear Op = "clear history"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Friendly prefers the message carried by err (validation errors, backend
// messages, auth failures) and falls back to Format.
func Friendly(op Op, err error) string {
	if err == nil {
		return ""
	}
	var pu *mixtape.PlaybackUnavailableError
	if errors.As(err, &pu) {
		return "Preview not available for this track"
	}
	return mixtape.UserMessage(err, Format(op, err))
}
