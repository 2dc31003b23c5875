package take

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/stats"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.ReportFocus = true
	return v
}

// render draws the whole frame. Before the first WindowSizeMsg it
// assumes an 80x24 terminal.
func (m *Model) render() string {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = 80, 24
	}
	if layout.IsTooSmall(width, height) {
		return layout.RenderMinSizeMessage(width, height)
	}

	title := m.cfg.Subject
	if m.cfg.Difficulty != "" {
		title += " · " + m.cfg.Difficulty
	}
	header := layout.RenderHeader(title, m.countdown(width).Label(), width)
	footer := layout.RenderFooter(m.keyHints(), width)

	var content string
	switch {
	case m.result != nil:
		content = renderResult(*m.result, width)
	case m.phase == session.PhaseSummarizing && m.summary != nil:
		content = m.renderReview(width)
	case m.phase == session.PhaseFinalized || m.saving:
		content = renderCentered(width, theme.TextDim, "\n\nSubmitting your answers...")
	default:
		content = m.renderQuestion(width)
	}
	return layout.RenderFrame(header, content, footer, width, height)
}

func (m *Model) countdown(width int) components.Countdown {
	return components.Countdown{
		Remaining: m.state.RemainingSeconds,
		Total:     m.cfg.DurationSeconds,
		Width:     width - 4,
	}
}

// renderQuestion renders the active question with its options.
func (m *Model) renderQuestion(width int) string {
	if len(m.questions) == 0 {
		return renderCentered(width, theme.TextDim, "\n\nNo questions to show.")
	}
	idx := m.state.CurrentIndex
	q := m.questions[idx]

	var b strings.Builder

	info := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", idx+1, len(m.questions)))
	info += lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("   %s · %s", q.Chapter, q.Difficulty))
	if m.state.Marked[idx] {
		info += "   " + theme.Flagged.Render("⚑ marked")
	}
	b.WriteString(info)
	b.WriteString("\n  ")
	b.WriteString(m.countdown(width).View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render("  " + strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	prompt := lipgloss.NewStyle().
		Width(max(width-6, 20)).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Prompt)
	b.WriteString(indent(prompt, "  "))
	b.WriteString("\n\n")
	b.WriteString(indent(m.options.View(), "  "))
	b.WriteString("\n")
	b.WriteString(indent(m.renderPalette(width-4), "  "))
	b.WriteString("\n")

	if m.jump != nil {
		b.WriteString("\n  Go to question: " + m.jump.View())
	}
	b.WriteString(m.renderStatus())
	return b.String()
}

// renderPalette shows every question number, colored by its state:
// answered, marked or untouched. The current question is bracketed.
func (m *Model) renderPalette(width int) string {
	cells := make([]string, len(m.questions))
	for i := range m.questions {
		label := fmt.Sprintf(" %d ", i+1)
		if i == m.state.CurrentIndex {
			label = fmt.Sprintf("[%d]", i+1)
		}
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		switch {
		case m.state.Marked[i]:
			style = theme.Flagged
		case m.state.Answers[i] != "":
			style = theme.Chosen
		}
		if i == m.state.CurrentIndex {
			style = style.Underline(true)
		}
		cells[i] = style.Render(label)
	}
	return lipgloss.NewStyle().Width(max(width, 20)).Render(strings.Join(cells, " "))
}

func (m *Model) renderStatus() string {
	switch {
	case m.errMsg != "":
		return "\n  " + theme.Alert.Render(m.errMsg)
	case m.notice != "":
		return "\n  " + theme.Hint.Render(m.notice)
	}
	return ""
}

// renderReview renders the summary shown before final submission.
func (m *Model) renderReview(width int) string {
	s := *m.summary

	var heading, note string
	switch s.Reason {
	case exam.ReasonTimeout:
		heading = "Time is up"
		note = "Your answers will be submitted shortly."
	case exam.ReasonIntegrity:
		heading = "Test ended"
		note = "You left the test too many times. It will be submitted."
	default:
		heading = "Review before submitting"
		note = "Submit now, or go back to keep working."
	}

	rows := []struct{ label, value string }{
		{"Answered", fmt.Sprintf("%d of %d", s.Attempted, s.Total)},
		{"Unanswered", fmt.Sprint(s.Unattempted)},
		{"Marked", fmt.Sprint(s.Marked)},
		{"Time left", components.Countdown{Remaining: s.RemainingSeconds}.Label()},
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(heading))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-12s %s\n", r.label, theme.Body.Render(r.value)))
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(note))
	if m.saving {
		b.WriteString("\n\n" + theme.Hint.Render("Submitting..."))
	}

	card := theme.Card.Render(b.String())
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, card) + m.renderStatus()
}

// renderResult renders the scored record.
func renderResult(rec exam.ResultRecord, width int) string {
	scoreStyle := theme.Chosen
	if rec.Score < 50 {
		scoreStyle = theme.Alert
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Result"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%-12s %s\n", "Score", scoreStyle.Render(fmt.Sprintf("%.2f%%", rec.Score))))
	b.WriteString(fmt.Sprintf("%-12s %d\n", "Correct", rec.Correct))
	b.WriteString(fmt.Sprintf("%-12s %d\n", "Incorrect", rec.Incorrect))
	b.WriteString(fmt.Sprintf("%-12s %d\n", "Unanswered", rec.Unattempted))
	b.WriteString(fmt.Sprintf("%-12s %s\n", "Time taken", stats.FormatDuration(rec.TimeTaken)))
	if rec.Integrity.Incidents > 0 {
		b.WriteString(fmt.Sprintf("%-12s %d\n", "Incidents", rec.Integrity.Incidents))
	}

	card := theme.Card.Render(b.String())
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}

func renderCentered(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Render(text)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
