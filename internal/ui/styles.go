package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/hasanasadov/hasscreen/internal/session"
)

// Color palette
var (
	Primary    = lipgloss.Color("#38bdf8") // Sky blue accent
	Secondary  = lipgloss.Color("#818cf8") // Indigo
	Success    = lipgloss.Color("#34d399") // Emerald
	Warning    = lipgloss.Color("#fbbf24") // Amber
	Error      = lipgloss.Color("#f87171") // Red
	Muted      = lipgloss.Color("#6B7280") // Gray
	Foreground = lipgloss.Color("#F9FAFB") // Light gray
)

// Tint colors mirror the coarse session states the UI colors itself
// by.
var tintColors = map[session.Tint]lipgloss.Color{
	session.TintIdle:      Muted,
	session.TintAlone:     Secondary,
	session.TintConnected: Success,
	session.TintPaused:    Warning,
	session.TintStopped:   Error,
}

// TintColor returns the color for a session tint.
func TintColor(t session.Tint) lipgloss.Color {
	if c, ok := tintColors[t]; ok {
		return c
	}
	return Muted
}

// Text styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)
)

// StatusBadge renders the status string on a tint-colored badge.
func StatusBadge(status string, tint session.Tint) string {
	return lipgloss.NewStyle().
		Foreground(Foreground).
		Background(TintColor(tint)).
		Padding(0, 1).
		Bold(true).
		Render(status)
}

// Box styles
var SuccessBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Success).
	Padding(1, 2)

// Table styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary).
				Align(lipgloss.Center)

	tableCellStyle = lipgloss.NewStyle().Padding(0, 1)

	TableRowStyle = tableCellStyle.Foreground(lipgloss.Color("255"))

	TableRowAltStyle = tableCellStyle.Foreground(lipgloss.Color("245"))
)

// Spinner style
var SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)

// Emoji helpers for consistent iconography
const (
	IconScreen  = "🖥️"
	IconEye     = "👀"
	IconSuccess = "✅"
	IconError   = "❌"
	IconPeer    = "👤"
	IconPause   = "⏸️"
	IconStop    = "⏹️"
	IconCopy    = "📋"
	IconLink    = "🔗"
)

func PrintError(msg string) {
	fmt.Printf("%s %s\n", ErrorStyle.Render(IconError), ErrorStyle.Render(msg))
}
