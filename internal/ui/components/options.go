package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// OptionList is the answer selector for one question. Cursor is the
// highlighted row; Chosen is the recorded answer, or -1.
type OptionList struct {
	Options []string
	Cursor  int
	Chosen  int
}

// NewOptionList builds a list for options with answer preselected when it
// is one of them. The cursor starts on the recorded answer.
func NewOptionList(options []string, answer string) OptionList {
	l := OptionList{Options: options, Chosen: -1}
	for i, opt := range options {
		if answer != "" && opt == answer {
			l.Chosen = i
			l.Cursor = i
			break
		}
	}
	return l
}

// Label returns the letter shown for option i.
func Label(i int) string {
	return string(rune('A' + i))
}

// IndexForKey maps a letter key to an option index.
func (l OptionList) IndexForKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0] | 0x20 // lower-case
	if c < 'a' || c > 'z' {
		return 0, false
	}
	i := int(c - 'a')
	return i, i < len(l.Options)
}

// Update moves the cursor.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return l, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
	}
	return l, nil
}

// View renders the options, one per line.
func (l OptionList) View() string {
	var b strings.Builder
	for i, opt := range l.Options {
		prefix := "  "
		if i == l.Cursor {
			prefix = "▸ "
		}
		mark := " "
		if i == l.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, Label(i), opt)

		switch {
		case i == l.Chosen:
			b.WriteString(theme.Chosen.Render(line))
		case i == l.Cursor:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
