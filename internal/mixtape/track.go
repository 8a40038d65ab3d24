// Package mixtape holds the value types shared by the queue, playback,
// generation and theming components.
package mixtape

import "strings"

const embedBaseURL = "https://open.spotify.com/embed/track/"

// Track is a single song. Two tracks are the same entity iff their ID matches.
type Track struct {
	ID          string `json:"spotify_track_id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	URI         string `json:"spotify_uri,omitempty"`
	Album       string `json:"album,omitempty"`
	AlbumArtURL string `json:"album_art_url,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
}

// HasPreview reports whether the track can be played inline.
func (t Track) HasPreview() bool {
	return !isAbsent(t.PreviewURL)
}

// HasArtwork reports whether the track carries an artwork URL.
func (t Track) HasArtwork() bool {
	return !isAbsent(t.AlbumArtURL)
}

// SpotifyURI returns the track URI, deriving it from the ID when missing.
func (t Track) SpotifyURI() string {
	if t.URI != "" {
		return t.URI
	}
	return "spotify:track:" + t.ID
}

// EmbedURL returns the external player URL used when no preview is available.
func (t Track) EmbedURL() string {
	return embedBaseURL + t.ID + "?utm_source=generator"
}

// Validate checks the fields required before a track can be queued.
func (t Track) Validate() error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return &ValidationError{Field: "spotify_track_id", Message: "track id is required"}
	case strings.TrimSpace(t.Title) == "":
		return &ValidationError{Field: "title", Message: "title is required"}
	case strings.TrimSpace(t.Artist) == "":
		return &ValidationError{Field: "artist", Message: "artist is required"}
	}
	return nil
}

// Normalize clears placeholder values the backend uses for missing URLs.
func (t Track) Normalize() Track {
	if isAbsent(t.PreviewURL) {
		t.PreviewURL = ""
	}
	if isAbsent(t.AlbumArtURL) {
		t.AlbumArtURL = ""
	}
	return t
}

// Dedupe returns tracks with later duplicates (by ID) removed, preserving order.
func Dedupe(tracks []Track) []Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// IndexOf returns the position of the track with the given ID, or -1.
func IndexOf(tracks []Track, id string) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}

func isAbsent(url string) bool {
	url = strings.TrimSpace(url)
	return url == "" || url == "null"
}
