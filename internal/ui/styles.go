package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all lipgloss styles for terminal output
type Styles struct {
	enabled bool

	// Verdict styles
	Human    lipgloss.Style
	Possible lipgloss.Style
	LikelyAI lipgloss.Style

	// Structural styles
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Path      lipgloss.Style
	Label     lipgloss.Style
	Separator lipgloss.Style
	Error     lipgloss.Style

	// Icons (degraded to ASCII when not interactive)
	IconHuman    string
	IconPossible string
	IconLikelyAI string
	IconError    string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged (for non-TTY output)
func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Human = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))    // Green
		s.Possible = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
		s.LikelyAI = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red

		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")) // White bold
		s.Subheader = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))          // Gray
		s.Path = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))               // Gray
		s.Label = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))             // Cyan
		s.Separator = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))          // Gray
		s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))              // Red

		s.IconHuman = "✓"    // check mark
		s.IconPossible = "⚠" // warning sign
		s.IconLikelyAI = "✗" // ballot x
		s.IconError = "✗"
	} else {
		// No-op styles for non-TTY (plain text output)
		s.Human = lipgloss.NewStyle()
		s.Possible = lipgloss.NewStyle()
		s.LikelyAI = lipgloss.NewStyle()

		s.Header = lipgloss.NewStyle()
		s.Subheader = lipgloss.NewStyle()
		s.Path = lipgloss.NewStyle()
		s.Label = lipgloss.NewStyle()
		s.Separator = lipgloss.NewStyle()
		s.Error = lipgloss.NewStyle()

		s.IconHuman = "OK:"
		s.IconPossible = "WARN:"
		s.IconLikelyAI = "FLAG:"
		s.IconError = "ERROR:"
	}

	return s
}

// Enabled returns whether styling is enabled
func (s *Styles) Enabled() bool {
	return s.enabled
}
