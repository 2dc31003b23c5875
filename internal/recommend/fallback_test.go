package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/stats"
)

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func trend(scores ...float64) []stats.TrendPoint {
	out := make([]stats.TrendPoint, len(scores))
	for i, s := range scores {
		out[i] = stats.TrendPoint{TestNumber: i + 1, Score: s, Date: time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC)}
	}
	return out
}

func difficulty(easy, medium, hard stats.DifficultyStats) []stats.DifficultyStats {
	easy.Difficulty = exam.DifficultyEasy
	medium.Difficulty = exam.DifficultyMedium
	hard.Difficulty = exam.DifficultyHard
	return []stats.DifficultyStats{easy, medium, hard}
}

// steady is a healthy history that triggers no rule by itself.
func steady() stats.Analysis {
	return stats.Analysis{
		Overall: stats.Overall{TotalTests: 8, AverageScore: 72, AverageAccuracy: 74, TotalAttempted: 100, TotalCorrect: 74},
		Trend:   trend(70, 72, 74),
	}
}

func TestFallbackRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *stats.Analysis)
		want   []string
	}{
		{
			name:   "steady history",
			mutate: func(*stats.Analysis) {},
			want:   []string{},
		},
		{
			name: "weakest chapter",
			mutate: func(a *stats.Analysis) {
				a.WeakChapters = []stats.ChapterStats{
					{Chapter: "Optics", Total: 6, Accuracy: 20},
					{Chapter: "Waves", Total: 4, Accuracy: 50},
				}
			},
			want: []string{"Master Optics"},
		},
		{
			name: "weakest attempted difficulty",
			mutate: func(a *stats.Analysis) {
				a.Difficulty = difficulty(
					stats.DifficultyStats{Correct: 9, Incorrect: 1, Accuracy: 90},
					stats.DifficultyStats{Correct: 13, Incorrect: 7, Accuracy: 65},
					stats.DifficultyStats{Total: 4, Accuracy: 0},
				)
			},
			want: []string{"Build Medium Level Skills"},
		},
		{
			name: "difficulty at threshold",
			mutate: func(a *stats.Analysis) {
				a.Difficulty = difficulty(
					stats.DifficultyStats{Correct: 7, Incorrect: 3, Accuracy: 70},
					stats.DifficultyStats{Correct: 8, Incorrect: 2, Accuracy: 80},
					stats.DifficultyStats{},
				)
			},
			want: []string{},
		},
		{
			name: "inconsistent recent scores",
			mutate: func(a *stats.Analysis) {
				a.Overall.AverageScore = 72
				a.Trend = trend(70, 40, 100, 50)
			},
			want: []string{"Improve Consistency"},
		},
		{
			name: "strong chapter",
			mutate: func(a *stats.Analysis) {
				a.StrongChapters = []stats.ChapterStats{{Chapter: "Kinematics", Total: 5, Accuracy: 100}}
			},
			want: []string{"Continue Excelling in Kinematics"},
		},
		{
			name: "accurate but slow",
			mutate: func(a *stats.Analysis) {
				a.Overall.AverageAccuracy = 85
				a.Overall.AverageScore = 65
				a.Trend = trend(64, 65, 66)
			},
			want: []string{"Improve Speed Without Sacrificing Accuracy"},
		},
		{
			name: "low accuracy",
			mutate: func(a *stats.Analysis) {
				a.Overall.AverageAccuracy = 45
			},
			want: []string{"Focus on Accuracy First"},
		},
		{
			name: "few tests",
			mutate: func(a *stats.Analysis) {
				a.Overall.TotalTests = 4
			},
			want: []string{"Increase Practice Volume"},
		},
		{
			name: "excellent scores",
			mutate: func(a *stats.Analysis) {
				a.Overall.AverageScore = 88
				a.Overall.AverageAccuracy = 90
				a.Trend = trend(86, 88, 90)
			},
			want: []string{"Excellent Performance - Fine Tuning"},
		},
		{
			name: "excellent scores with three recommendations already",
			mutate: func(a *stats.Analysis) {
				a.Overall.AverageScore = 88
				a.Overall.AverageAccuracy = 90
				a.Trend = trend(86, 88, 90)
				a.WeakChapters = []stats.ChapterStats{{Chapter: "Optics", Total: 3, Accuracy: 33.33}}
				a.StrongChapters = []stats.ChapterStats{{Chapter: "Kinematics", Total: 5, Accuracy: 100}}
				a.Overall.TotalTests = 2
			},
			want: []string{"Master Optics", "Continue Excelling in Kinematics", "Increase Practice Volume"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := steady()
			tt.mutate(&a)
			assert.Equal(t, tt.want, titles(Fallback(a)))
		})
	}
}

func TestFallbackEmptyHistory(t *testing.T) {
	recs := Fallback(stats.Analyze(nil))
	require.Len(t, recs, 1)
	assert.Equal(t, "Increase Practice Volume", recs[0].Title)
	assert.Equal(t, PriorityMedium, recs[0].Priority)
	assert.Equal(t, "You've taken only 0 tests. More practice is needed to identify patterns and improve systematically.", recs[0].Description)
	assert.Equal(t, "Target 1-2 tests per day for the next week", recs[0].Action)
}

func TestFallbackTruncatesInRuleOrder(t *testing.T) {
	a := stats.Analysis{
		Overall:        stats.Overall{TotalTests: 3, AverageScore: 50, AverageAccuracy: 40, TotalAttempted: 30, TotalCorrect: 12},
		WeakChapters:   []stats.ChapterStats{{Chapter: "Optics", Total: 6, Accuracy: 10}},
		StrongChapters: []stats.ChapterStats{{Chapter: "Units", Total: 3, Accuracy: 100}},
		Difficulty: difficulty(
			stats.DifficultyStats{Correct: 5, Incorrect: 5, Accuracy: 50},
			stats.DifficultyStats{Correct: 5, Incorrect: 10, Accuracy: 33.33},
			stats.DifficultyStats{Correct: 2, Incorrect: 3, Accuracy: 40},
		),
		Trend: trend(10, 90, 50),
	}

	recs := Fallback(a)
	require.Len(t, recs, MaxRecommendations)
	assert.Equal(t, []string{
		"Master Optics",
		"Build Medium Level Skills",
		"Improve Consistency",
		"Continue Excelling in Units",
		"Focus on Accuracy First",
	}, titles(recs))
	for _, r := range recs {
		assert.NotEmpty(t, r.Description)
		assert.NotEmpty(t, r.Action)
		assert.NotEmpty(t, r.Impact)
	}
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, PriorityMedium, recs[3].Priority)
}

func TestFallbackIsDeterministic(t *testing.T) {
	a := steady()
	a.WeakChapters = []stats.ChapterStats{{Chapter: "Optics", Total: 6, Accuracy: 20}}
	assert.Equal(t, Fallback(a), Fallback(a))
}
