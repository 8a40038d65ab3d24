package mpris

import (
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/playback"
)

func TestMetadataFor(t *testing.T) {
	if _, ok := metadataFor(playback.Snapshot{}); ok {
		t.Error("metadataFor(empty) ok = true")
	}

	snap := playback.Snapshot{
		State: playback.StatePlaying,
		Track: &mixtape.Track{
			ID:          "4uLU6hMCjMI75M1A2tKUQC",
			Title:       "Blue in Green",
			Artist:      "Miles Davis",
			Album:       "Kind of Blue",
			AlbumArtURL: "https://i.scdn.co/image/kob",
			PreviewURL:  "https://p.scdn.co/mp3-preview/big",
		},
		Duration: 30 * time.Second,
	}
	info, ok := metadataFor(snap)
	if !ok {
		t.Fatal("metadataFor() ok = false")
	}
	if info.artURL != "https://i.scdn.co/image/kob" {
		t.Errorf("artURL = %q", info.artURL)
	}
	if info.length != 30*time.Second || info.title != "Blue in Green" || info.album != "Kind of Blue" {
		t.Errorf("info = %+v", info)
	}
	if !strings.HasPrefix(info.trackID, "/org/mpris/MediaPlayer2/Track/") {
		t.Errorf("trackID = %q", info.trackID)
	}
	if info.trackID != formatTrackID("4uLU6hMCjMI75M1A2tKUQC") {
		t.Error("trackID is not stable")
	}
}

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		state playback.State
		want  types.PlaybackStatus
	}{
		{playback.StateIdle, types.PlaybackStatusStopped},
		{playback.StateReady, types.PlaybackStatusStopped},
		{playback.StateLoading, types.PlaybackStatusPlaying},
		{playback.StatePlaying, types.PlaybackStatusPlaying},
		{playback.StatePaused, types.PlaybackStatusPaused},
		{playback.StateEnded, types.PlaybackStatusStopped},
	}
	for _, tt := range tests {
		if got := playbackStatus(tt.state); got != tt.want {
			t.Errorf("playbackStatus(%v) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestCanNavigate(t *testing.T) {
	for n, want := range map[int]bool{0: false, 1: false, 2: true, 10: true} {
		if got := canNavigate(playback.Snapshot{QueueLen: n}); got != want {
			t.Errorf("canNavigate(len %d) = %v, want %v", n, got, want)
		}
	}
}
