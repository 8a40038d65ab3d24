package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "So What", "So What"},
		{"tab kept", "a\tb", "a\tb"},
		{"newline dropped", "line\nbreak", "linebreak"},
		{"escape sequence dropped", "bad\x1b[31mred", "badred"},
		{"bell dropped", "ding\x07", "ding"},
		{"nbsp", "a\u00a0b", "a b"},
		{"invalid utf8", "ok\xffok", "okok"},
		{"wide kept", "東京", "東京"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"no truncation needed", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"truncation with ellipsis", "hello world", 8, "hello w…"},
		{"zero width", "hello", 0, ""},
		{"empty string", "", 10, ""},
		{"wide characters", "東京タワー", 5, "東京…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		input string
		width int
	}{
		{"short", 10},
		{"a much longer title than fits", 10},
		{"東京タワー", 7},
		{"", 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Fit(tt.input, tt.width)
			if w := lipgloss.Width(got); w != tt.width {
				t.Errorf("Fit(%q, %d) width = %d (%q)", tt.input, tt.width, w, got)
			}
		})
	}
}

func TestRow(t *testing.T) {
	got := Row("left", "right", 20)
	if lipgloss.Width(got) != 20 {
		t.Errorf("Row width = %d, want 20", lipgloss.Width(got))
	}
	if !strings.HasPrefix(got, "left") || !strings.HasSuffix(got, "right") {
		t.Errorf("Row = %q", got)
	}

	if got := Row("left", "right", 5); got != "left right" {
		t.Errorf("Row overflow = %q, want single space gap", got)
	}
}

func TestLines(t *testing.T) {
	if got := Lines("a\nb\nc", 2); got != "a\nb" {
		t.Errorf("Lines cut = %q", got)
	}
	if got := Lines("a", 3); got != "a\n\n" {
		t.Errorf("Lines pad = %q", got)
	}
	if got := Lines("a", 0); got != "" {
		t.Errorf("Lines zero = %q", got)
	}
}

func TestSeparator(t *testing.T) {
	if got := Separator(3); got != "───" {
		t.Errorf("Separator(3) = %q", got)
	}
	if got := Separator(-1); got != "" {
		t.Errorf("Separator(-1) = %q", got)
	}
}

func TestClip(t *testing.T) {
	styled := "\x1b[1mhello\x1b[0m world"
	got := Clip(styled, 3)
	if plain := ansi.Strip(got); plain != "hel" {
		t.Errorf("Clip visible text = %q, want %q", plain, "hel")
	}
	if !strings.HasPrefix(got, "\x1b[1m") {
		t.Errorf("Clip dropped the style: %q", got)
	}
	if got := Clip(styled, 0); got != "" {
		t.Errorf("Clip(0) = %q", got)
	}
}
