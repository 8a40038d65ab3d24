package notify

import (
	"fmt"
	"strings"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

const defaultTimeout = 5000

// NowPlaying describes a track that started playing. icon may be empty.
func NowPlaying(t mixtape.Track, icon string) Notification {
	body := t.Artist
	if t.Album != "" {
		body += " - " + t.Album
	}
	return Notification{
		Title:   t.Title,
		Body:    body,
		Icon:    icon,
		Timeout: defaultTimeout,
		Urgency: UrgencyLow,
	}
}

// MixtapeReady announces a finished prompt generation.
func MixtapeReady(gen *mixtape.Generation) Notification {
	a := gen.Analysis
	var parts []string
	for _, s := range []string{a.Mood, a.Genre, a.Language} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	body := fmt.Sprintf("%d songs found", len(gen.Candidates))
	if len(parts) > 0 {
		body = strings.Join(parts, " · ") + "\n" + body
	}
	return Notification{
		Title:   "Mixtape ready",
		Body:    body,
		Icon:    "audio-x-generic",
		Timeout: defaultTimeout,
		Urgency: UrgencyNormal,
	}
}

// PlaylistExtended announces tracks added by queue generation.
func PlaylistExtended(res *mixtape.BatchResult) Notification {
	body := fmt.Sprintf("%d songs added", len(res.Added))
	if n := len(res.NotFound); n > 0 {
		body += fmt.Sprintf(", %d not found", n)
	}
	return Notification{
		Title:   "Playlist generated",
		Body:    body,
		Icon:    "audio-x-generic",
		Timeout: defaultTimeout,
		Urgency: UrgencyNormal,
	}
}
