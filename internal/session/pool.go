package session

import (
	"context"
	"slices"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

// QuestionSource is the read-only content collaborator.
type QuestionSource interface {
	Questions(ctx context.Context, subject string) ([]exam.Question, error)
}

// FilterPool narrows a subject's questions by difficulty (case-insensitive)
// and, when any are given, by chapter. An empty difficulty matches all.
// If nothing matches, the unfiltered list is returned so a session never
// starts without questions.
func FilterPool(all []exam.Question, difficulty string, chapters []string) []exam.Question {
	var out []exam.Question
	for _, q := range all {
		if difficulty != "" && !strings.EqualFold(q.Difficulty, difficulty) {
			continue
		}
		if len(chapters) > 0 && !slices.Contains(chapters, q.Chapter) {
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return slices.Clone(all)
	}
	return out
}
