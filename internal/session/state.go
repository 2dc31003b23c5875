package session

import (
	"maps"
	"sort"

	"github.com/abhisek/examprep/internal/exam"
)

// Phase is a step of the session lifecycle.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseActive
	PhaseSummarizing
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// State is the recoverable part of a session. Answer and mark keys are
// always valid indices into the session's question list.
type State struct {
	CurrentIndex     int
	Answers          map[int]string
	Marked           map[int]bool
	RemainingSeconds int
	Incidents        int
}

func newState(remaining int) State {
	return State{
		Answers:          make(map[int]string),
		Marked:           make(map[int]bool),
		RemainingSeconds: remaining,
	}
}

func (s State) clone() State {
	s.Answers = maps.Clone(s.Answers)
	s.Marked = maps.Clone(s.Marked)
	return s
}

// MarkedIndices returns the marked set in ascending order.
func (s State) MarkedIndices() []int {
	out := make([]int, 0, len(s.Marked))
	for i, ok := range s.Marked {
		if ok {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Summary is what the review screen shows before final submission.
type Summary struct {
	Total            int
	Attempted        int
	Unattempted      int
	Marked           int
	RemainingSeconds int
	Reason           exam.SubmitReason
	CanResume        bool
}

func (s State) summarize(total int) Summary {
	attempted := len(s.Answers)
	return Summary{
		Total:            total,
		Attempted:        attempted,
		Unattempted:      total - attempted,
		Marked:           len(s.MarkedIndices()),
		RemainingSeconds: s.RemainingSeconds,
	}
}
