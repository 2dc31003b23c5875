// Package take is the terminal screen for a timed test. It renders the
// session controller's state and turns key presses into controller calls;
// the countdown, reviews and results arrive as messages from the
// controller's callbacks.
package take

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/integrity"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
)

// Model is the bubbletea model for one test attempt.
type Model struct {
	ctx       context.Context
	ctl       *session.Controller
	events    *Events
	questions []exam.Question
	cfg       exam.TestConfiguration

	state   session.State
	phase   session.Phase
	options components.OptionList
	jump    *components.NumberInput
	summary *session.Summary
	result  *exam.ResultRecord
	saving  bool

	notice string
	errMsg string

	width  int
	height int
	quit   bool
}

var _ tea.Model = (*Model)(nil)

// New creates the screen for a started controller. Callbacks for ctl must
// have been attached through events.
func New(ctx context.Context, ctl *session.Controller, events *Events) *Model {
	m := &Model{
		ctx:       ctx,
		ctl:       ctl,
		events:    events,
		questions: ctl.Questions(),
		cfg:       ctl.Config(),
	}
	if ctl.Restored() {
		m.notice = "Continuing your unfinished test."
	}
	m.refresh()
	if m.phase == session.PhaseSummarizing {
		s := ctl.Summary()
		m.summary = &s
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.events.Wait()
}

// Quit reports whether the user left with the test unfinished.
func (m *Model) Quit() bool { return m.quit }

// Result returns the finalized record, if the test was submitted.
func (m *Model) Result() (exam.ResultRecord, bool) {
	if m.result == nil {
		return exam.ResultRecord{}, false
	}
	return *m.result, true
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.state.RemainingSeconds = msg.Remaining
		return m, m.events.Wait()

	case warningMsg:
		m.notice = ""
		m.errMsg = fmt.Sprintf("You left the test (%d of %d allowed).", msg.Incident.Count, integrity.DefaultThreshold)
		return m, m.events.Wait()

	case summaryMsg:
		s := msg.Summary
		m.summary = &s
		m.jump = nil
		m.refresh()
		return m, m.events.Wait()

	case resultMsg:
		rec := msg.Record
		m.result = &rec
		m.saving = false
		m.refresh()
		return m, nil

	case finalizeFailedMsg:
		m.saving = false
		m.errMsg = msg.Err.Error()
		return m, nil

	case tea.BlurMsg:
		return m, m.leave()

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.jump != nil {
		var cmd tea.Cmd
		*m.jump, cmd = m.jump.Update(msg)
		return m, cmd
	}
	return m, nil
}

// leave records that the terminal lost focus.
func (m *Model) leave() tea.Cmd {
	if m.result != nil {
		return nil
	}
	if _, err := m.ctl.VisibilityLost(); err != nil {
		m.errMsg = err.Error()
	}
	m.refresh()
	return nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quit = m.result == nil
		return m, tea.Quit
	}

	// Result screen: any key exits.
	if m.result != nil {
		return m, tea.Quit
	}

	m.errMsg = ""
	if m.jump != nil {
		return m.handleJumpKey(msg)
	}

	switch m.phase {
	case session.PhaseSummarizing:
		return m.handleReviewKey(key)
	case session.PhaseActive:
		return m.handleQuestionKey(msg)
	}
	return m, nil
}

func (m *Model) handleReviewKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "enter":
		if m.saving {
			return m, nil
		}
		m.saving = true
		return m, m.finalize()
	case "r", "esc":
		if m.summary == nil || !m.summary.CanResume {
			return m, nil
		}
		if err := m.ctl.Resume(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.summary = nil
		m.refresh()
	case "q":
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleQuestionKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	cur := m.state.CurrentIndex
	var err error

	switch key := msg.String(); key {
	case "q":
		m.quit = true
		return m, tea.Quit
	case "up", "k", "down", "j":
		m.options, _ = m.options.Update(msg)
		return m, nil
	case "enter", "space":
		err = m.choose(m.options.Cursor)
	case "right", "l", "n":
		_, err = m.ctl.Next()
	case "left", "h", "p":
		_, err = m.ctl.Previous()
	case "m":
		_, err = m.ctl.ToggleMark(cur)
	case "x", "backspace":
		err = m.ctl.ClearAnswer(cur)
	case "g":
		in := components.NewNumberInput(fmt.Sprintf("1-%d", len(m.questions)), 4)
		m.jump = &in
		return m, in.Init()
	case "s":
		var s session.Summary
		if s, err = m.ctl.Submit(); err == nil {
			m.summary = &s
		}
	default:
		if i, ok := optionIndex(m.options, key); ok {
			err = m.choose(i)
		} else {
			return m, nil
		}
	}

	if err != nil {
		m.errMsg = err.Error()
	}
	m.notice = ""
	m.refresh()
	return m, nil
}

func (m *Model) handleJumpKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.jump = nil
		return m, nil
	case "enter":
		n, err := m.jump.Value()
		m.jump = nil
		if err != nil {
			m.errMsg = "Type a question number."
			return m, nil
		}
		if err := m.ctl.Navigate(n - 1); err != nil {
			m.errMsg = fmt.Sprintf("There is no question %d.", n)
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	*m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// optionIndex maps a letter or a 1-based digit to an option.
func optionIndex(l components.OptionList, key string) (int, bool) {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		return i, i < len(l.Options)
	}
	return l.IndexForKey(key)
}

func (m *Model) choose(i int) error {
	q := m.questions[m.state.CurrentIndex]
	if i < 0 || i >= len(q.Options) {
		return nil
	}
	return m.ctl.SelectOption(m.state.CurrentIndex, q.Options[i])
}

// finalize submits in the background. The record arrives as a resultMsg
// through the controller's callback.
func (m *Model) finalize() tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		if _, err := ctl.Finalize(ctx); err != nil && !errors.Is(err, session.ErrFinalized) {
			return finalizeFailedMsg{Err: err}
		}
		return nil
	}
}

// refresh pulls the controller's state. The cursor is kept while the
// same question stays on screen.
func (m *Model) refresh() {
	prev := m.state.CurrentIndex
	hadOptions := m.options.Options != nil
	cursor := m.options.Cursor

	m.state = m.ctl.State()
	m.phase = m.ctl.Phase()
	if len(m.questions) == 0 {
		return
	}
	q := m.questions[m.state.CurrentIndex]
	m.options = components.NewOptionList(q.Options, m.state.Answers[m.state.CurrentIndex])
	if hadOptions && prev == m.state.CurrentIndex && m.options.Chosen < 0 {
		m.options.Cursor = min(cursor, len(q.Options)-1)
	}
}

func (m *Model) keyHints() []layout.KeyHint {
	switch {
	case m.result != nil:
		return []layout.KeyHint{{Key: "any key", Description: "Exit"}}
	case m.jump != nil:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	case m.phase == session.PhaseSummarizing:
		hints := []layout.KeyHint{{Key: "Y", Description: "Submit"}}
		if m.summary != nil && m.summary.CanResume {
			hints = append(hints, layout.KeyHint{Key: "R", Description: "Back to test"})
		}
		return append(hints, layout.KeyHint{Key: "Q", Description: "Save & quit"})
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "←→", Description: "Move"},
		{Key: "M", Description: "Mark"},
		{Key: "X", Description: "Clear"},
		{Key: "G", Description: "Go to"},
		{Key: "S", Description: "Submit"},
		{Key: "Q", Description: "Save & quit"},
	}
}
