package ui

import "github.com/charmbracelet/lipgloss"

// Status marker colors. ANSI codes keep them readable on 16-color consoles,
// which is what most storage nodes are administered from.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow/orange
	ColorInfo    lipgloss.Color = "6" // Cyan
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)
