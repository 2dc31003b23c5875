package exam

import "slices"

// Question is read-only reference data owned by the content catalog.
type Question struct {
	ID         string   `json:"id,omitempty"`
	Prompt     string   `json:"question"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer"`
	Difficulty string   `json:"difficulty"`
	Chapter    string   `json:"chapter"`
}

// HasOption reports whether opt is one of the question's choices.
func (q Question) HasOption(opt string) bool {
	return slices.Contains(q.Options, opt)
}

// IsCorrect reports whether answer matches the keyed option.
func (q Question) IsCorrect(answer string) bool {
	return answer != "" && answer == q.Answer
}
