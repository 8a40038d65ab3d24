package playerbar

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/ui/styles"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{5 * time.Second, "0:05"},
		{30 * time.Second, "0:30"},
		{61 * time.Second, "1:01"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderVolume(t *testing.T) {
	if got := RenderVolume(1, false); got != "vol 100%" {
		t.Errorf("RenderVolume(1) = %q", got)
	}
	if got := RenderVolume(0.5, false); got != "vol  50%" {
		t.Errorf("RenderVolume(0.5) = %q", got)
	}
	if got := RenderVolume(0.5, true); got != "muted" {
		t.Errorf("RenderVolume muted = %q", got)
	}
}

func TestNewState(t *testing.T) {
	track := &mixtape.Track{ID: "abc", Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue"}
	s := NewState(playback.Snapshot{
		State:    playback.StatePaused,
		Index:    1,
		Track:    track,
		QueueLen: 3,
		Position: 10 * time.Second,
		Duration: 30 * time.Second,
	}, 0.8, false)

	if s.Title != "So What" || s.Artist != "Miles Davis" || s.Album != "Kind of Blue" {
		t.Errorf("metadata = %+v", s)
	}
	if s.Embed != track.EmbedURL() {
		t.Errorf("Embed = %q, want %q", s.Embed, track.EmbedURL())
	}

	track.PreviewURL = "https://p.scdn.co/mp3-preview/abc"
	s = NewState(playback.Snapshot{State: playback.StatePlaying, Track: track, QueueLen: 1}, 1, false)
	if s.Embed != "" {
		t.Errorf("Embed = %q for a track with preview", s.Embed)
	}
}

func TestRender(t *testing.T) {
	p := styles.Default()

	if got := Render(State{Status: playback.StateIdle}, 80, p); got != "" {
		t.Errorf("idle render = %q, want empty", got)
	}

	s := State{
		Status:   playback.StatePlaying,
		Title:    "So What",
		Artist:   "Miles Davis",
		Index:    0,
		QueueLen: 2,
		Position: 15 * time.Second,
		Duration: 30 * time.Second,
		Volume:   1,
	}
	got := Render(s, 80, p)
	if lines := strings.Count(got, "\n") + 1; lines != Height {
		t.Errorf("rendered %d lines, want %d", lines, Height)
	}
	if w := lipgloss.Width(got); w != 80 {
		t.Errorf("rendered width = %d, want 80", w)
	}
	for _, want := range []string{"So What", "Miles Davis", "1/2", "0:15", "0:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("render missing %q:\n%s", want, got)
		}
	}
}

func TestRenderProgressBar_Narrow(t *testing.T) {
	got := RenderProgressBar(5*time.Second, 30*time.Second, 8, styles.Default())
	if got != "0:05 / 0:30" {
		t.Errorf("narrow bar = %q", got)
	}
}
