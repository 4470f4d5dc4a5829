// Package theme holds the terminal calculator's light and dark palettes.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Name identifies a palette.
type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
)

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Name, error) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggle returns the other palette.
func (n Name) Toggle() Name {
	if n == Dark {
		return Light
	}
	return Dark
}

// Palette is the set of semantic colors the UI draws with.
type Palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Text       lipgloss.Color
	Subtext    lipgloss.Color
	Accent     lipgloss.Color
	Operator   lipgloss.Color
	Error      lipgloss.Color
}

// Catppuccin Latte and Mocha.
var palettes = map[Name]Palette{
	Light: {
		Background: "#eff1f5",
		Surface:    "#ccd0da",
		Text:       "#4c4f69",
		Subtext:    "#6c6f85",
		Accent:     "#ea76cb",
		Operator:   "#fe640b",
		Error:      "#d20f39",
	},
	Dark: {
		Background: "#1e1e2e",
		Surface:    "#313244",
		Text:       "#cdd6f4",
		Subtext:    "#a6adc8",
		Accent:     "#f5c2e7",
		Operator:   "#fab387",
		Error:      "#f38ba8",
	},
}

// PaletteFor returns the palette for n, falling back to Light.
func PaletteFor(n Name) Palette {
	if p, ok := palettes[n]; ok {
		return p
	}
	return palettes[Light]
}

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Frame          lipgloss.Style
	Display        lipgloss.Style
	DisplayError   lipgloss.Style
	Key            lipgloss.Style
	OperatorKey    lipgloss.Style
	ActiveOperator lipgloss.Style
	Tape           lipgloss.Style
	Status         lipgloss.Style
	StatusError    lipgloss.Style
}

// NewStyles builds the styles for n.
func NewStyles(n Name) Styles {
	p := PaletteFor(n)
	key := lipgloss.NewStyle().
		Width(6).
		Align(lipgloss.Center).
		Foreground(p.Text).
		Background(p.Surface).
		MarginRight(1)

	return Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Background(p.Background).
			Padding(0, 1),
		Display: lipgloss.NewStyle().
			Width(27).
			Align(lipgloss.Right).
			Bold(true).
			Foreground(p.Text),
		DisplayError: lipgloss.NewStyle().
			Width(27).
			Align(lipgloss.Right).
			Bold(true).
			Foreground(p.Error),
		Key:            key,
		OperatorKey:    key.Foreground(p.Operator),
		ActiveOperator: key.Foreground(p.Background).Background(p.Operator).Bold(true),
		Tape:           lipgloss.NewStyle().Foreground(p.Subtext),
		Status:         lipgloss.NewStyle().Foreground(p.Subtext).Italic(true),
		StatusError:    lipgloss.NewStyle().Foreground(p.Error),
	}
}
