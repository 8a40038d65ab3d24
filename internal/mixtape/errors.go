package mixtape

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when no valid session is available.
	// Operations fail with it before any network call is issued.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrPlaybackUnavailable means the track has no inline preview.
	ErrPlaybackUnavailable = errors.New("playback unavailable")

	// ErrStaleResponse marks a result that no longer matches the current input.
	// It is never shown to the user.
	ErrStaleResponse = errors.New("stale response")

	// ErrGenerationPending is returned when a generation is already in flight.
	ErrGenerationPending = errors.New("generation already in progress")

	// ErrMutationFailed is matched by every *MutationError.
	ErrMutationFailed = errors.New("queue mutation failed")

	// ErrTrackNotFound is returned by the store when removing an absent track.
	ErrTrackNotFound = errors.New("track not found")

	ErrEmptyPrompt           = &ValidationError{Field: "prompt", Message: "prompt must not be empty"}
	ErrInsufficientQueueSize = &ValidationError{Field: "queue", Message: "You need at least 4 songs to generate a playlist"}
	ErrDuplicateTrack        = &ValidationError{Field: "spotify_track_id", Message: "Song already in mixtape"}
)

// ValidationError is a locally detected input problem. No request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Is matches validation errors with the same field and message, so wrapped
// sentinels like ErrInsufficientQueueSize compare equal to fresh copies.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return e.Field == t.Field && e.Message == t.Message
}

// NetworkError is a transport or service failure.
type NetworkError struct {
	Op      string
	Status  int    // HTTP status, 0 for transport errors
	Message string // message from the service body, if any
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": network error"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MutationError wraps a failed add or remove.
type MutationError struct {
	Op      string
	TrackID string
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.TrackID, e.Err)
}

func (e *MutationError) Unwrap() []error { return []error{ErrMutationFailed, e.Err} }

// PlaybackUnavailableError carries the embed URL the caller can fall back to.
// Err is set when a preview URL exists but could not be loaded.
type PlaybackUnavailableError struct {
	TrackID  string
	EmbedURL string
	Err      error
}

func (e *PlaybackUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("preview for track %s unavailable: %v", e.TrackID, e.Err)
	}
	return "no preview for track " + e.TrackID
}

func (e *PlaybackUnavailableError) Is(target error) bool {
	return target == ErrPlaybackUnavailable
}

func (e *PlaybackUnavailableError) Unwrap() error { return e.Err }

// Unavailable builds the error for a track that cannot be played inline.
func Unavailable(t Track, cause error) *PlaybackUnavailableError {
	return &PlaybackUnavailableError{TrackID: t.ID, EmbedURL: t.EmbedURL(), Err: cause}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage returns the text to show for err: the service message if the
// service supplied one, a validation message, or fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ne *NetworkError
	if errors.As(err, &ne) && ne.Message != "" {
		return ne.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrUnauthenticated) {
		return "Please log in first"
	}
	if errors.Is(err, ErrGenerationPending) {
		return "A generation is already running"
	}
	return fallback
}
