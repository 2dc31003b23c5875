package take

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/integrity"
	"github.com/abhisek/examprep/internal/session"
)

// Events turns session callbacks into tea messages. The controller calls
// back from its own goroutines; the screen reads one message at a time
// through Wait.
type Events struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewEvents creates an open event queue.
func NewEvents() *Events {
	return &Events{
		ch:   make(chan tea.Msg, 64),
		done: make(chan struct{}),
	}
}

// Attach sets the callbacks on opts.
func (e *Events) Attach(opts *session.Options) {
	opts.OnTick = func(remaining int) { e.offer(tickMsg{Remaining: remaining}) }
	opts.OnWarning = func(inc integrity.Incident) { e.send(warningMsg{Incident: inc}) }
	opts.OnSummary = func(s session.Summary) { e.send(summaryMsg{Summary: s}) }
	opts.OnFinalized = func(rec exam.ResultRecord) { e.send(resultMsg{Record: rec}) }
}

// offer drops the message when the queue is full. A missed tick is
// superseded by the next one.
func (e *Events) offer(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
	}
}

func (e *Events) send(msg tea.Msg) {
	select {
	case e.ch <- msg:
	case <-e.done:
	}
}

// Wait returns a command that delivers the next event.
func (e *Events) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-e.ch:
			return msg
		case <-e.done:
			return nil
		}
	}
}

// Close releases any callback still blocked on the queue.
func (e *Events) Close() {
	e.once.Do(func() { close(e.done) })
}
