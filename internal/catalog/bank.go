package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

// ErrUnknownSubject is returned when the bank holds no questions for a subject.
var ErrUnknownSubject = errors.New("no questions for subject")

// Bank is an in-memory question bank keyed by subject. It is read-only
// once loaded and safe for concurrent use.
type Bank struct {
	bySubject map[string][]exam.Question
}

// LoadBank reads a JSON question bank from path.
func LoadBank(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return ParseBank(f)
}

// ParseBank decodes a bank of the form {"<subject>": [question, ...]}.
// Keys are matched case-insensitively and a "_questions" suffix is
// ignored, so "chemistry_questions" serves the subject "Chemistry".
// Questions without an id get "<subject>-<n>".
func ParseBank(r io.Reader) (*Bank, error) {
	var raw map[string][]exam.Question
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	b := &Bank{bySubject: make(map[string][]exam.Question, len(raw))}
	var problems []string
	for key, qs := range raw {
		subject := subjectKey(key)
		problems = append(problems, validateQuestions(subject, qs)...)
		for i := range qs {
			if qs[i].ID == "" {
				qs[i].ID = fmt.Sprintf("%s-%d", subject, i+1)
			}
		}
		b.bySubject[subject] = append(b.bySubject[subject], qs...)
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, errors.New("invalid question bank:\n  " + strings.Join(problems, "\n  "))
	}
	return b, nil
}

// Questions returns a copy of the subject's questions.
func (b *Bank) Questions(ctx context.Context, subject string) ([]exam.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qs, ok := b.bySubject[subjectKey(subject)]
	if !ok || len(qs) == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownSubject, subject)
	}
	return slices.Clone(qs), nil
}

// Subjects returns the normalized subject keys held, sorted.
func (b *Bank) Subjects() []string {
	out := make([]string, 0, len(b.bySubject))
	for k := range b.bySubject {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ChapterCounts returns how many questions each chapter of subject has.
func (b *Bank) ChapterCounts(subject string) map[string]int {
	counts := make(map[string]int)
	for _, q := range b.bySubject[subjectKey(subject)] {
		counts[q.Chapter]++
	}
	return counts
}

func subjectKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSuffix(s, "_questions")
}
