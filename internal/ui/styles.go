package ui

import "github.com/charmbracelet/lipgloss"

// Color palette: a single lime accent on grays.
const (
	ColorLime     = "154" // Roots and components
	ColorLimeDim  = "106" // Component groups
	ColorWhite    = "255" // Plain groups
	ColorGray     = "245" // Stories, labels
	ColorDarkGray = "238" // Tree branches, ids
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Docs-only markers, warnings
)

// Styles holds the styles used by tree and summary rendering.
type Styles struct {
	// Tree nodes
	Root      lipgloss.Style
	Group     lipgloss.Style
	Component lipgloss.Style
	Story     lipgloss.Style
	Docs      lipgloss.Style
	Branch    lipgloss.Style
	ID        lipgloss.Style

	// Summary
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns colored styles for terminals.
func DefaultStyles() Styles {
	return Styles{
		Root:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Group:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Component: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Story:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Docs:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Branch:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		ID:        lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),

		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Root:      plain,
		Group:     plain,
		Component: plain,
		Story:     plain,
		Docs:      plain,
		Branch:    plain,
		ID:        plain,
		Header:    plain,
		Label:     plain,
		Value:     plain,
		Warning:   plain,
		Error:     plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
