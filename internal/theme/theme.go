// Package theme derives the ambient background from the current track
// artwork, the last analysis and the playing flag.
package theme

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

// DefaultMoodKey is used when the analysis names no known mood or genre.
const DefaultMoodKey = "Default"

// initialGradient is shown before any track or analysis is known.
const initialGradient = "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"

// DefaultDominant replaces the artwork color when there is no artwork or
// sampling fails.
var DefaultDominant = colorful.Color{R: 102.0 / 255, G: 126.0 / 255, B: 234.0 / 255}

var moodTable = map[string]string{
	"Energetic": "#ffb347",
	"Chill":     "#6dd5ed",
	"Sad":       "#b993d6",
	"Happy":     "#f7971e",
	"Dark":      "#232526",
	"Pop":       "#ff6a88",
	"Rock":      "#232526",
	"Jazz":      "#43cea2",
	"Classical": "#f8ffae",
	"Default":   "#764ba2",
}

// State is the derived visual state.
type State struct {
	Primary   colorful.Color
	Secondary colorful.Color
	// MoodKey is the mood table entry Secondary came from.
	MoodKey   string
	Animating bool
}

// Derive computes the visual state. It has no side effects.
func Derive(dominant colorful.Color, analysis *mixtape.AnalysisResult, playing bool) State {
	key, secondary := MoodColor(analysis)
	return State{
		Primary:   dominant,
		Secondary: secondary,
		MoodKey:   key,
		Animating: playing,
	}
}

// Initial returns the state used before any input is known.
func Initial() State {
	return Derive(DefaultDominant, nil, false)
}

// MoodColor maps the analysis mood, or the genre when the mood is empty,
// through the mood table. Lookups ignore case.
func MoodColor(analysis *mixtape.AnalysisResult) (string, colorful.Color) {
	name := ""
	if analysis != nil {
		name = strings.TrimSpace(analysis.Mood)
		if name == "" {
			name = strings.TrimSpace(analysis.Genre)
		}
	}
	key := lookupKey(name)
	c, _ := colorful.Hex(moodTable[key])
	return key, c
}

func lookupKey(name string) string {
	if name == "" {
		return DefaultMoodKey
	}
	if _, ok := moodTable[name]; ok {
		return name
	}
	for k := range moodTable {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return DefaultMoodKey
}

// SecondaryHex returns the mood color as listed in the mood table.
func (s State) SecondaryHex() string {
	if hex, ok := moodTable[s.MoodKey]; ok {
		return hex
	}
	return s.Secondary.Hex()
}

// CSS renders the state as a linear gradient.
func (s State) CSS() string {
	if s.IsInitial() {
		return initialGradient
	}
	r, g, b := rgb255(s.Primary)
	return fmt.Sprintf("linear-gradient(135deg, rgb(%d,%d,%d), %s 100%%)", r, g, b, s.SecondaryHex())
}

// IsInitial reports whether s carries only default colors.
func (s State) IsInitial() bool {
	return s.MoodKey == DefaultMoodKey && sameRGB(s.Primary, DefaultDominant)
}

func rgb255(c colorful.Color) (r, g, b uint8) {
	return c.Clamped().RGB255()
}

func sameRGB(a, b colorful.Color) bool {
	ar, ag, ab := rgb255(a)
	br, bg, bb := rgb255(b)
	return ar == br && ag == bg && ab == bb
}

// Blend returns n colors from Primary to Secondary, blended in HCL space.
func (s State) Blend(n int) []colorful.Color {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []colorful.Color{s.Primary}
	}
	out := make([]colorful.Color, n)
	for i := range n {
		t := float64(i) / float64(n-1)
		out[i] = s.Primary.BlendHcl(s.Secondary, t).Clamped()
	}
	return out
}

// Pulse returns a brightness factor in [0.85, 1] for animation frame f.
// It is constant when the state is not animating.
func (s State) Pulse(frame int) float64 {
	if !s.Animating {
		return 1
	}
	return 0.925 + 0.075*math.Sin(float64(frame)*math.Pi/8)
}
