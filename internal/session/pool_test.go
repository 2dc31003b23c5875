package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/examprep/internal/exam"
)

func poolFixture() []exam.Question {
	return []exam.Question{
		{ID: "q1", Difficulty: "Easy", Chapter: "Optics"},
		{ID: "q2", Difficulty: "easy", Chapter: "Mechanics"},
		{ID: "q3", Difficulty: "Hard", Chapter: "Optics"},
		{ID: "q4", Difficulty: "Medium", Chapter: "Waves"},
	}
}

func ids(qs []exam.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestFilterPool(t *testing.T) {
	tests := []struct {
		name       string
		difficulty string
		chapters   []string
		want       []string
	}{
		{"difficulty is case-insensitive", "EASY", nil, []string{"q1", "q2"}},
		{"chapters narrow further", "Easy", []string{"Optics"}, []string{"q1"}},
		{"empty chapter list is ignored", "Hard", []string{}, []string{"q3"}},
		{"empty difficulty matches all", "", []string{"Optics"}, []string{"q1", "q3"}},
		{"no match falls back to everything", "Hard", []string{"Waves"}, []string{"q1", "q2", "q3", "q4"}},
		{"unknown difficulty falls back", "Extreme", nil, []string{"q1", "q2", "q3", "q4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterPool(poolFixture(), tt.difficulty, tt.chapters)))
		})
	}
}

func TestFilterPool_FallbackIsACopy(t *testing.T) {
	all := poolFixture()
	got := FilterPool(all, "Extreme", nil)
	got[0].ID = "changed"
	assert.Equal(t, "q1", all[0].ID)
}
