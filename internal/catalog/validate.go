package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

// validateSubjects checks the syllabus for empty or duplicate names.
// Returns a combined error describing all problems found, or nil if valid.
func validateSubjects(subjects []Subject) error {
	var errs []string
	seen := make(map[string]bool, len(subjects))

	for _, s := range subjects {
		key := strings.ToLower(s.Name)
		if key == "" {
			errs = append(errs, "subject with empty name")
		}
		if seen[key] {
			errs = append(errs, fmt.Sprintf("duplicate subject %q", s.Name))
		}
		seen[key] = true

		chapters := make(map[string]bool)
		for _, sc := range s.Subcategories {
			if sc.Name == "" {
				errs = append(errs, fmt.Sprintf("subject %q has a subcategory with empty name", s.Name))
			}
			if len(sc.Chapters) == 0 {
				errs = append(errs, fmt.Sprintf("subcategory %q in %q has no chapters", sc.Name, s.Name))
			}
			for _, ch := range sc.Chapters {
				if chapters[ch] {
					errs = append(errs, fmt.Sprintf("chapter %q appears twice in %q", ch, s.Name))
				}
				chapters[ch] = true
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("invalid catalog:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}

// validateQuestions reports questions a session could not score: no
// options, or a keyed answer that is not one of them.
func validateQuestions(subject string, qs []exam.Question) []string {
	var errs []string
	for i, q := range qs {
		label := q.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			errs = append(errs, fmt.Sprintf("%s question %s has no text", subject, label))
		}
		if len(q.Options) < 2 {
			errs = append(errs, fmt.Sprintf("%s question %s has fewer than two options", subject, label))
		}
		if !q.HasOption(q.Answer) {
			errs = append(errs, fmt.Sprintf("%s question %s: answer %q is not an option", subject, label, q.Answer))
		}
	}
	return errs
}
