package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func TestOptionList(t *testing.T) {
	l := NewOptionList([]string{"Joule", "Newton", "Watt"}, "Newton")
	assert.Equal(t, 1, l.Chosen)
	assert.Equal(t, 1, l.Cursor)

	l, _ = l.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	l, _ = l.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, l.Cursor, "cursor stops at the last option")
	l, _ = l.Update(tea.KeyPressMsg{Code: 'k', Text: "k"})
	assert.Equal(t, 1, l.Cursor)

	assert.Contains(t, l.View(), "● B)  Newton")
	assert.Equal(t, -1, NewOptionList([]string{"x"}, "").Chosen)
}

func TestOptionListIndexForKey(t *testing.T) {
	l := NewOptionList([]string{"a", "b", "c", "d"}, "")
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"a", 0, true},
		{"D", 3, true},
		{"e", 4, false},
		{"1", 0, false},
		{"up", 0, false},
	}
	for _, tt := range tests {
		got, ok := l.IndexForKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.key)
		}
	}
}

func TestCountdown(t *testing.T) {
	c := Countdown{Remaining: 450, Total: 900, Width: 40}
	assert.InDelta(t, 0.5, c.Fraction(), 1e-9)
	assert.False(t, c.Low())
	assert.Contains(t, c.View(), "07:30")

	c.Remaining = 60
	assert.True(t, c.Low())
	assert.Zero(t, Countdown{Remaining: 10}.Fraction())
	assert.Equal(t, 1.0, Countdown{Remaining: 20, Total: 10}.Fraction())
}

func TestNumberInput(t *testing.T) {
	n := NewNumberInput("1-3", 4)
	n, _ = n.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	assert.Empty(t, n.Model.Value())

	n.Model.SetValue("12")
	v, err := n.Value()
	assert.NoError(t, err)
	assert.Equal(t, 12, v)
}
