package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette. Calm on a dark terminal; color is reserved for state.
var (
	Primary = lipgloss.Color("#6366F1") // Indigo
	Accent  = lipgloss.Color("#0EA5E9") // Sky
	Success = lipgloss.Color("#22C55E") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Marked  = lipgloss.Color("#A855F7") // Purple
	Text    = lipgloss.Color("#F1F5F9")
	TextDim = lipgloss.Color("#94A3B8")
	BgCard  = lipgloss.Color("#1E293B")
	Border  = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Chosen = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Flagged = lipgloss.NewStyle().
		Foreground(Marked).
		Bold(true)

	Alert = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Card frames the review and result panels.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(1, 2)
