package exam

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
	}{
		{"Easy", DifficultyEasy},
		{"easy", DifficultyEasy},
		{" HARD ", DifficultyHard},
		{"Medium", DifficultyMedium},
		{"insane", DifficultyMedium},
		{"", DifficultyMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDifficulty(tt.in), "ParseDifficulty(%q)", tt.in)
	}
}

func TestNormalized_DefaultsDuration(t *testing.T) {
	c := TestConfiguration{Subject: "Physics"}.Normalized()
	assert.Equal(t, DefaultDurationSeconds, c.DurationSeconds)

	c = TestConfiguration{Subject: "Physics", DurationSeconds: -5}.Normalized()
	assert.Equal(t, DefaultDurationSeconds, c.DurationSeconds)

	c = TestConfiguration{Subject: "Physics", DurationSeconds: 1200}.Normalized()
	assert.Equal(t, 1200, c.DurationSeconds)
}

func TestNormalized_CopiesSlices(t *testing.T) {
	chapters := []string{"Optics"}
	c := TestConfiguration{Chapters: chapters}.Normalized()
	chapters[0] = "Mechanics"
	assert.Equal(t, "Optics", c.Chapters[0])
}

func TestEqual(t *testing.T) {
	a := TestConfiguration{Subject: "Chemistry", Scope: ScopeChapterwise, Chapters: []string{"Acids"}, Difficulty: "Easy", DurationSeconds: 900}
	b := a
	b.Difficulty = "easy"
	assert.True(t, a.Equal(b))

	b.Chapters = []string{"Bases"}
	assert.False(t, a.Equal(b))

	c := a
	c.DurationSeconds = 1800
	assert.False(t, a.Equal(c))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      TestConfiguration
		problems int
	}{
		{"valid complete", TestConfiguration{Subject: "Maths", Scope: ScopeComplete, DurationSeconds: 900}, 0},
		{"missing subject", TestConfiguration{Scope: ScopeComplete, DurationSeconds: 900}, 1},
		{"chapterwise without chapters", TestConfiguration{Subject: "Maths", Scope: ScopeChapterwise, DurationSeconds: 900}, 1},
		{"subcategorywise without subcategories", TestConfiguration{Subject: "Maths", Scope: ScopeSubcategorywise, DurationSeconds: 900}, 1},
		{"too short", TestConfiguration{Subject: "Maths", Scope: ScopeComplete, DurationSeconds: 600}, 1},
		{"too long", TestConfiguration{Subject: "Maths", Scope: ScopeComplete, DurationSeconds: 181 * 60}, 1},
		{"everything wrong", TestConfiguration{Scope: "random"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.problems == 0 {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Problems, tt.problems)
		})
	}
}

func TestQuestion(t *testing.T) {
	q := Question{Options: []string{"A", "B"}, Answer: "B"}
	assert.True(t, q.HasOption("A"))
	assert.False(t, q.HasOption("C"))
	assert.True(t, q.IsCorrect("B"))
	assert.False(t, q.IsCorrect("A"))
	assert.False(t, q.IsCorrect(""))
}

func TestRound2AndPercent(t *testing.T) {
	assert.Equal(t, 58.33, Round2(Percent(7, 12)))
	assert.Equal(t, 83.33, Round2(Percent(5, 6)))
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 50.0, Round2(Percent(2, 4)))
}
