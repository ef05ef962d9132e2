package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette (subset): https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

const (
	colorAccent = colorPink
	colorFocus  = colorLavender
	colorError  = colorRed
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	statusStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText)
	badgeStyle   = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface1).Padding(0, 1)
	clearStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	dividerStyle = lipgloss.NewStyle().Foreground(colorSurface2)
	caretStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	emptyStyle   = lipgloss.NewStyle().Foreground(colorOverlay0).Italic(true)
	markStyle    = lipgloss.NewStyle().Foreground(colorPeach)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface2).
			Padding(0, 1)
	focusedContainerStyle = containerStyle.BorderForeground(colorFocus)

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1)
)

// rowStyle mirrors the selected/highlighted classes of a menu row.
func rowStyle(selected, highlighted bool) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(colorText)
	switch {
	case selected && highlighted:
		st = st.Background(colorSurface2).Bold(true)
	case highlighted:
		st = st.Background(colorSurface1).Bold(true)
	case selected:
		st = st.Background(colorSurface0).Foreground(colorFocus)
	}
	return st
}
