package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/mixtape/internal/theme"
)

// Fixed text and status colors. Accent colors come from the theme engine.
var (
	FgBase   = lipgloss.Color("#c0c0c0")
	FgMuted  = lipgloss.Color("#808080")
	FgSubtle = lipgloss.Color("#585858")
	BgCursor = lipgloss.Color("#303030")
	Border   = lipgloss.Color("#585858")
	Success  = lipgloss.Color("#42b883")
	Error    = lipgloss.Color("#ff5555")
	Warning  = lipgloss.Color("#f1a208")
)

// Palette is the set of colors and styles for one rendered frame.
type Palette struct {
	Primary   colorful.Color
	Secondary colorful.Color

	Base    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Title   lipgloss.Style
	Accent  lipgloss.Style // primary accent, bold
	Playing lipgloss.Style
	Cursor  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// FromTheme builds a palette from the ambient theme. pulse scales the
// accent lightness while the theme animates.
func FromTheme(st theme.State, pulse float64) Palette {
	if pulse <= 0 {
		pulse = 1
	}
	primary := Scale(st.Primary, pulse)
	secondary := Scale(st.Secondary, pulse)
	base := lipgloss.NewStyle().Foreground(FgBase)

	return Palette{
		Primary:   primary,
		Secondary: secondary,
		Base:      base,
		Muted:     lipgloss.NewStyle().Foreground(FgMuted),
		Subtle:    lipgloss.NewStyle().Foreground(FgSubtle),
		Title:     base.Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(Color(primary)).Bold(true),
		Playing:   lipgloss.NewStyle().Foreground(Color(secondary)).Bold(true),
		Cursor:    lipgloss.NewStyle().Background(BgCursor).Foreground(FgBase),
		Success:   lipgloss.NewStyle().Foreground(Success),
		Error:     lipgloss.NewStyle().Foreground(Error),
		Warning:   lipgloss.NewStyle().Foreground(Warning),
	}
}

// Default is the palette of the initial theme.
func Default() Palette {
	return FromTheme(theme.Initial(), 1)
}
