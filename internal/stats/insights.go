package stats

import (
	"fmt"
	"strings"
)

// Insight is a lightweight dashboard hint computed without any remote
// call.
type Insight struct {
	Kind        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// Insights derives quick hints from an analysis.
func Insights(a Analysis) []Insight {
	var out []Insight

	if len(a.WeakChapters) > 0 {
		names := make([]string, len(a.WeakChapters))
		for i, c := range a.WeakChapters {
			names[i] = c.Chapter
		}
		out = append(out, Insight{
			Kind:        "weak_chapters",
			Priority:    "high",
			Title:       "Focus on Weak Chapters",
			Description: "You need improvement in: " + strings.Join(names, ", "),
			Action:      "Practice these chapters with easy to medium difficulty questions",
		})
	}

	if len(a.Subjects) > 0 {
		weakest := a.Subjects[0]
		for _, s := range a.Subjects[1:] {
			if s.AverageScore < weakest.AverageScore {
				weakest = s
			}
		}
		if weakest.AverageScore < 70 {
			out = append(out, Insight{
				Kind:        "subject_focus",
				Priority:    "medium",
				Title:       "Improve " + weakest.Subject,
				Description: fmt.Sprintf("Your average score in %s is %.2f%%", weakest.Subject, weakest.AverageScore),
				Action:      fmt.Sprintf("Take more %s tests and focus on fundamentals", weakest.Subject),
			})
		}
	}

	if o := a.Overall; o.TotalAttempted > 0 && float64(o.TotalTimeSpent)/float64(o.TotalAttempted) > 90 {
		out = append(out, Insight{
			Kind:        "time_management",
			Priority:    "medium",
			Title:       "Work on Speed",
			Description: "You're taking too much time per question",
			Action:      "Practice timed quizzes with shorter durations to improve speed",
		})
	}

	if a.Overall.TotalTests > 0 && a.Overall.AverageAccuracy < 70 {
		out = append(out, Insight{
			Kind:        "accuracy",
			Priority:    "high",
			Title:       "Focus on Accuracy",
			Description: fmt.Sprintf("Your accuracy is %.2f%%", a.Overall.AverageAccuracy),
			Action:      "Review incorrect answers and understand concepts thoroughly",
		})
	}

	if a.Overall.TotalTests < 5 {
		out = append(out, Insight{
			Kind:        "consistency",
			Priority:    "low",
			Title:       "Practice More Tests",
			Description: "Take more tests to build confidence and identify patterns",
			Action:      "Aim for at least 2-3 tests per week",
		})
	}

	return out
}

// FormatDuration renders seconds as "1h 5m", "5m 3s" or "45s".
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
