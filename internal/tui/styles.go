// Package tui is the thin, view-only chrome layer: a status line and an
// optional palette overlay, rendered as plain strings the coordinator writes
// directly to the terminal above and below the presenter's blitted image
// area. It is not a bubbletea Model — the coordinator loop (C6) is its own
// supervisor and does not hand control to a second event loop.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#2F71F2", Dark: "#4A90FF"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#FFA500", Dark: "#FFA500"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#FF4672"}
	ColorDim     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}

	StyleTitle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleDim     = lipgloss.NewStyle().Foreground(ColorDim)
	StyleStatus  = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleLoading = lipgloss.NewStyle().Foreground(ColorWarning)
)
