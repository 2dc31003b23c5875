package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// LowTimeSeconds is when the countdown turns to the warning color.
const LowTimeSeconds = 60

// Countdown shows the remaining test time as a draining bar and mm:ss.
type Countdown struct {
	Remaining int
	Total     int
	Width     int
}

// Fraction returns the share of time left, clamped to [0, 1].
func (c Countdown) Fraction() float64 {
	if c.Total <= 0 {
		return 0
	}
	return min(max(float64(c.Remaining)/float64(c.Total), 0), 1)
}

// Low reports whether the warning color applies.
func (c Countdown) Low() bool {
	return c.Remaining <= LowTimeSeconds
}

// Label renders just the clock.
func (c Countdown) Label() string {
	style := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	if c.Low() {
		style = style.Foreground(theme.Warning)
	}
	return style.Render("⏱ " + clock.FormatRemaining(c.Remaining))
}

// View renders the bar followed by the clock.
func (c Countdown) View() string {
	label := c.Label()
	barWidth := max(c.Width-lipgloss.Width(label)-2, 4)

	filled := min(int(float64(barWidth)*c.Fraction()), barWidth)
	fill := theme.Accent
	if c.Low() {
		fill = theme.Warning
	}

	bar := lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	return bar + "  " + label
}
