package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/mixtape/internal/keymap"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/ui/playerbar"
	"github.com/llehouerou/mixtape/internal/ui/render"
	"github.com/llehouerou/mixtape/internal/ui/styles"
)

const (
	headerHeight = 1
	promptHeight = 3
	statusHeight = 1
	minBodyRows  = 3
)

// View renders the application UI.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	p := styles.FromTheme(m.Theme, m.Theme.Pulse(m.Frame))

	bar := playerbar.Render(m.playerState(), m.Width, p)
	barHeight := 0
	if bar != "" {
		barHeight = playerbar.Height
	}
	bodyHeight := max(m.Height-headerHeight-promptHeight-statusHeight-barHeight, minBodyRows+2)

	var body string
	if m.ShowHelp {
		body = m.renderHelp(p, bodyHeight)
	} else {
		leftWidth := m.Width / 2
		rightWidth := m.Width - leftWidth
		var left string
		if m.ShowHistory {
			left = m.renderHistory(p, leftWidth, bodyHeight)
		} else {
			left = m.renderCandidates(p, leftWidth, bodyHeight)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderQueue(p, rightWidth, bodyHeight))
	}

	parts := []string{m.renderHeader(p), m.renderPrompt(p), body}
	if bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, m.renderStatus(p))

	return render.Lines(strings.Join(parts, "\n"), m.Height)
}

func (m Model) playerState() playerbar.State {
	return playerbar.NewState(m.Playback, m.app.Volume(), m.app.Muted())
}

func (m Model) renderHeader(p styles.Palette) string {
	title := styles.ApplyBoldGradient("♪ mixtape", p.Primary, p.Secondary)

	var chips []string
	if a := m.Generation.Analysis; a != nil {
		for _, s := range []string{a.Mood, a.Genre, a.Language} {
			if s != "" {
				chips = append(chips, s)
			}
		}
	}
	left := title
	if len(chips) > 0 {
		left += "  " + p.Muted.Render(strings.Join(chips, " · "))
	}

	user := p.Subtle.Render("not logged in")
	if s := m.app.Sessions.Current(); s != nil {
		user = p.Muted.Render(s.Username)
	}
	return render.Clip(render.Row(left, user, m.Width), m.Width)
}

func (m Model) renderPrompt(p styles.Palette) string {
	content := m.Prompt.View()
	if m.Generation.Pending {
		label := "Generating mixtape..."
		if m.Generation.Kind.String() == "queue" {
			label = "Generating playlist..."
		}
		content = m.Spinner.View() + " " + p.Accent.Render(label)
	}
	return p.PanelStyle(m.Focus == FocusPrompt).
		Width(max(m.Width-2, 0)).
		Render(content)
}

// listRow is one rendered list entry.
type listRow struct {
	text    string
	marker  string
	playing bool
}

// renderList draws rows in a bordered panel, scrolled so the cursor stays
// visible.
func renderList(p styles.Palette, title string, rows []listRow, cursor int, focused bool, width, height int, empty string) string {
	inner := max(width-2, 4)
	visible := max(height-3, 1) // borders and title

	lines := []string{p.Title.Render(render.Truncate(title, inner))}
	if len(rows) == 0 {
		lines = append(lines, p.Subtle.Render(render.Truncate(empty, inner)))
	}

	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}
	for i := offset; i < len(rows) && i < offset+visible; i++ {
		r := rows[i]
		marker := r.marker
		if marker == "" {
			marker = " "
		}
		text := render.Fit(marker+" "+r.text, inner)
		switch {
		case i == cursor && focused:
			text = p.Cursor.Render(text)
		case r.playing:
			text = p.Playing.Render(text)
		default:
			text = p.Base.Render(text)
		}
		lines = append(lines, text)
	}

	return p.PanelStyle(focused).
		Width(inner).
		Height(height - 2).
		Render(render.Lines(strings.Join(lines, "\n"), height-2))
}

func trackLabel(t mixtape.Track) string {
	return t.Title + " - " + t.Artist
}

func (m Model) renderCandidates(p styles.Palette, width, height int) string {
	rows := make([]listRow, len(m.Candidates))
	for i, t := range m.Candidates {
		rows[i] = listRow{text: trackLabel(t)}
		if m.queued(t.ID) {
			rows[i].marker = "✓"
		}
	}
	title := "Songs"
	if m.Generation.Prompt != "" {
		title = fmt.Sprintf("Songs for %q", m.Generation.Prompt)
	}
	return renderList(p, title, rows, m.CandCursor, m.Focus == FocusCandidates, width, height,
		"Write a prompt to find songs")
}

func (m Model) renderQueue(p styles.Palette, width, height int) string {
	current := -1
	if m.Playback.State != playback.StateIdle {
		current = m.Playback.Index
	}
	rows := make([]listRow, len(m.Tracks))
	for i, t := range m.Tracks {
		rows[i] = listRow{text: trackLabel(t), playing: i == current}
		switch {
		case i == current && m.Playback.State == playback.StatePlaying:
			rows[i].marker = "▶"
		case i == current:
			rows[i].marker = "•"
		case !t.HasPreview():
			rows[i].marker = "○"
		}
	}
	title := fmt.Sprintf("Mixtape (%d)", len(m.Tracks))
	return renderList(p, title, rows, m.QueueCursor, m.Focus == FocusQueue, width, height,
		"Your mixtape is empty")
}

func (m Model) renderHistory(p styles.Palette, width, height int) string {
	rows := make([]listRow, len(m.History))
	for i, e := range m.History {
		text := e.Prompt
		if e.Analysis.Mood != "" {
			text += " · " + e.Analysis.Mood
		}
		rows[i] = listRow{text: text + " · " + humanize.Time(e.CreatedAt)}
	}
	return renderList(p, "History", rows, m.HistCursor, m.Focus == FocusHistory, width, height,
		"No prompts yet")
}

func (m Model) renderHelp(p styles.Palette, height int) string {
	inner := max(m.Width-2, 4)
	var lines []string
	for _, ctx := range []string{
		keymap.ContextGlobal, keymap.ContextPlayback, keymap.ContextPrompt,
		keymap.ContextCandidates, keymap.ContextQueue, keymap.ContextHistory,
	} {
		lines = append(lines, p.Accent.Render(ctx))
		for _, b := range keymap.ByContext(ctx) {
			keys := make([]string, len(b.Keys))
			for i, k := range b.Keys {
				if k == " " {
					k = "space"
				}
				keys[i] = k
			}
			lines = append(lines, render.Fit(fmt.Sprintf("  %-22s %s", strings.Join(keys, ", "), b.Description), inner))
		}
	}
	return p.PanelStyle(true).
		Width(inner).
		Height(height - 2).
		Render(render.Lines(strings.Join(lines, "\n"), height-2))
}

func (m Model) renderStatus(p styles.Palette) string {
	if m.Message != "" {
		style := p.Success
		if m.MessageIsError {
			style = p.Error
		}
		return style.Render(render.Truncate(m.Message, m.Width))
	}
	hint := "/ prompt · tab focus · space play · n/p skip · ctrl+g extend · H history · ? help · q quit"
	return p.Subtle.Render(render.Truncate(hint, m.Width))
}
