// Package playerbar renders the now-playing bar.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/ui/render"
	"github.com/llehouerou/mixtape/internal/ui/styles"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	endedSymbol   = "■"
)

// Height is the rendered height: top border, two content rows, bottom border.
const Height = 4

// State holds everything needed to render the player bar.
type State struct {
	Status   playback.State
	Title    string
	Artist   string
	Album    string
	Index    int
	QueueLen int
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Muted    bool
	// Embed is set when the current track has no preview and can only be
	// opened in the external player.
	Embed string
}

// NewState builds a State from a controller snapshot.
func NewState(s playback.Snapshot, volume float64, muted bool) State {
	st := State{
		Status:   s.State,
		Index:    s.Index,
		QueueLen: s.QueueLen,
		Position: s.Position,
		Duration: s.Duration,
		Volume:   volume,
		Muted:    muted,
	}
	if t := s.Track; t != nil {
		st.Title = t.Title
		st.Artist = t.Artist
		st.Album = t.Album
		if !t.HasPreview() {
			st.Embed = t.EmbedURL()
		}
	}
	return st
}

// Visible reports whether there is a track to show.
func (s State) Visible() bool {
	return s.Status != playback.StateIdle && s.Title != ""
}

// Render returns the player bar for the given width, or "" when hidden.
func Render(s State, width int, p styles.Palette) string {
	if !s.Visible() {
		return ""
	}
	innerWidth := max(width-6, 10) // border + padding

	// Line 1: status, title, artist · album, position in queue, volume
	title := s.Title
	info := s.Artist
	if s.Album != "" {
		info += " · " + s.Album
	}
	right := fmt.Sprintf("%d/%d  %s", s.Index+1, s.QueueLen, RenderVolume(s.Volume, s.Muted))
	leftWidth := max(innerWidth-lipgloss.Width(right)-2, 4)

	status := statusSymbol(s.Status)
	titleWidth := min(lipgloss.Width(title), max(leftWidth-2, 1))
	head := status + " " + p.Title.Render(render.Truncate(title, titleWidth))
	if rest := leftWidth - 2 - titleWidth - 3; rest > 3 && info != "" {
		head += "   " + p.Muted.Render(render.Truncate(info, rest))
	}
	line1 := render.Row(head, p.Subtle.Render(right), innerWidth)

	// Line 2: progress, or the embed link when there is no preview
	var line2 string
	if s.Embed != "" {
		line2 = p.Warning.Render("No preview: ") + p.Muted.Render(render.Truncate(s.Embed, innerWidth-12))
	} else {
		line2 = RenderProgressBar(s.Position, s.Duration, innerWidth, p)
	}

	content := strings.Join([]string{line1, line2}, "\n")
	return p.PanelStyle(s.Status == playback.StatePlaying).
		Padding(0, 2).
		Width(width - 2).
		Render(content)
}

func statusSymbol(st playback.State) string {
	switch st {
	case playback.StatePlaying:
		return playSymbol
	case playback.StateLoading:
		return loadingSymbol
	case playback.StateEnded:
		return endedSymbol
	default:
		return pauseSymbol
	}
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	d = max(d, 0)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
