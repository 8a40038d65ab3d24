package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mixtape/internal/ui/styles"
)

const (
	filledBlock = "━"
	emptyBlock  = "─"
)

// RenderProgressBar renders the elapsed time, a bar filled with the theme
// gradient, and the duration.
// Format: 0:12  ━━━━━━──────  0:30
func RenderProgressBar(position, duration time.Duration, width int, p styles.Palette) string {
	posStr := FormatDuration(position)
	durStr := FormatDuration(duration)

	fixedWidth := lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth
	if barWidth < 3 {
		return posStr + " / " + durStr
	}

	var ratio float64
	if duration > 0 {
		ratio = min(float64(position)/float64(duration), 1)
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)

	var b strings.Builder
	b.WriteString(p.Muted.Render(posStr))
	b.WriteString("  ")
	if filled > 0 {
		b.WriteString(styles.ApplyGradient(strings.Repeat(filledBlock, filled), p.Primary, p.Secondary))
	}
	b.WriteString(p.Subtle.Render(strings.Repeat(emptyBlock, barWidth-filled)))
	b.WriteString("  ")
	b.WriteString(p.Muted.Render(durStr))
	return b.String()
}
