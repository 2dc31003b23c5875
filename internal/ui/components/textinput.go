package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// NumberInput wraps bubbles/textinput and accepts digits only.
type NumberInput struct {
	Model textinput.Model
}

// NewNumberInput creates a focused input for a positive integer.
func NewNumberInput(placeholder string, maxDigits int) NumberInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if maxDigits > 0 {
		ti.CharLimit = maxDigits
	}
	return NumberInput{Model: ti}
}

// Init returns the initial command.
func (n NumberInput) Init() tea.Cmd {
	return n.Model.Focus()
}

// Update handles messages, dropping printable keys that are not digits.
func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return n, nil
		}
	}
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the input.
func (n NumberInput) View() string {
	return n.Model.View()
}

// Value returns the digits typed so far as an integer.
func (n NumberInput) Value() (int, error) {
	return strconv.Atoi(n.Model.Value())
}
