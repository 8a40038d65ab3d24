package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// ApplyGradient renders text with a horizontal color gradient.
func ApplyGradient(text string, from, to colorful.Color) string {
	return applyGradient(text, false, from, to)
}

// ApplyBoldGradient renders bold text with a horizontal color gradient.
func ApplyBoldGradient(text string, from, to colorful.Color) string {
	return applyGradient(text, true, from, to)
}

func applyGradient(text string, bold bool, from, to colorful.Color) string {
	if text == "" {
		return ""
	}

	// Split into grapheme clusters for proper unicode handling
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	colors := Blend(from, to, len(clusters))

	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(Color(colors[i]))
		if bold {
			style = style.Bold(true)
		}
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// Blend returns n colors from a to b, blended in HCL space for
// perceptually even steps.
func Blend(a, b colorful.Color, n int) []colorful.Color {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []colorful.Color{a}
	}
	out := make([]colorful.Color, n)
	for i := range n {
		t := float64(i) / float64(n-1)
		out[i] = a.BlendHcl(b, t).Clamped()
	}
	return out
}

// Color converts a colorful color to a lipgloss color.
func Color(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}

// Scale multiplies the lightness of c by f, keeping hue and chroma.
func Scale(c colorful.Color, f float64) colorful.Color {
	h, ch, l := c.Hcl()
	return colorful.Hcl(h, ch, min(l*f, 1)).Clamped()
}
