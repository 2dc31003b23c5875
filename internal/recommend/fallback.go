package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/examprep/internal/stats"
)

const (
	weakDifficultyBelow   = 70.0
	consistencyWindow     = 3
	inconsistentStdDev    = 15.0
	minTestsForPatterns   = 5
	excellentScoreAtLeast = 80.0
	fineTuningBelowCount  = 3
)

// rule inspects an analysis and the recommendations chosen so far.
type rule func(a stats.Analysis, chosen []Recommendation) (Recommendation, bool)

var rules = []rule{
	masterWeakestChapter,
	buildDifficultyLevel,
	improveConsistency,
	keepStrongChapter,
	improveSpeed,
	accuracyFirst,
	morePractice,
	fineTuning,
}

// Fallback derives recommendations from fixed rules, evaluated in order
// and capped at MaxRecommendations. An analysis with no results yields
// only the practice-volume rule.
func Fallback(a stats.Analysis) []Recommendation {
	var out []Recommendation
	for _, r := range rules {
		if rec, ok := r(a, out); ok {
			out = append(out, rec)
		}
	}
	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

func masterWeakestChapter(a stats.Analysis, _ []Recommendation) (Recommendation, bool) {
	if len(a.WeakChapters) == 0 {
		return Recommendation{}, false
	}
	c := a.WeakChapters[0]
	return Recommendation{
		Title: "Master " + c.Chapter,
		Description: fmt.Sprintf("Your accuracy in %s is %.1f%%. This is your weakest chapter. "+
			"Focus on understanding core concepts and solving practice problems.", c.Chapter, c.Accuracy),
		Priority: PriorityHigh,
		Action:   "Solve 10-15 questions from this chapter daily",
		Impact:   "+10-15%",
	}, true
}

func buildDifficultyLevel(a stats.Analysis, _ []Recommendation) (Recommendation, bool) {
	var weakest *stats.DifficultyStats
	for i := range a.Difficulty {
		d := &a.Difficulty[i]
		if d.Attempted() == 0 || d.Accuracy >= weakDifficultyBelow {
			continue
		}
		if weakest == nil || d.Accuracy < weakest.Accuracy {
			weakest = d
		}
	}
	if weakest == nil {
		return Recommendation{}, false
	}
	level := string(weakest.Difficulty)
	return Recommendation{
		Title: fmt.Sprintf("Build %s Level Skills", level),
		Description: fmt.Sprintf("Your accuracy on %s questions is %.1f%%. "+
			"Strengthen this level before moving on to harder problems.", strings.ToLower(level), weakest.Accuracy),
		Priority: PriorityHigh,
		Action:   fmt.Sprintf("Practice %s questions with detailed solution review", strings.ToLower(level)),
		Impact:   "+8-12%",
	}, true
}

func improveConsistency(a stats.Analysis, _ []Recommendation) (Recommendation, bool) {
	if len(a.Trend) < consistencyWindow {
		return Recommendation{}, false
	}
	recent := a.Trend[len(a.Trend)-consistencyWindow:]
	var sum float64
	for _, p := range recent {
		d := p.Score - a.Overall.AverageScore
		sum += d * d
	}
	if math.Sqrt(sum/float64(len(recent))) <= inconsistentStdDev {
		return Recommendation{}, false
	}
	return Recommendation{
		Title: "Improve Consistency",
		Description: "Your recent scores vary widely from your average. " +
			"Consistent preparation across topics will stabilize your performance.",
		Priority: PriorityHigh,
		Action:   "Complete topic-wise tests on fundamentals before mixed tests",
		Impact:   "+5-10%",
	}, true
}

func keepStrongChapter(a stats.Analysis, _ []Recommendation) (Recommendation, bool) {
	if len(a.StrongChapters) == 0 {
		return Recommendation{}, false
	}
	c := a.StrongChapters[0]
	return Recommendation{
		Title: "Continue Excelling in " + c.Chapter,
		Description: fmt.Sprintf("You have %.1f%% accuracy in %s. "+
			"Keep it sharp with periodic revision while you work on weaker areas.", c.Accuracy, c.Chapter),
		Priority: PriorityMedium,
		Action:   "Take weekly tests in this chapter to maintain accuracy",
		Impact:   "Maintain +0%",
	}, true
}

func improveSpeed(a stats.Analysis, _ []Recommendation) (Recommendation, bool) {
	o := a.Overall
	if o.TotalTests == 0 || o.AverageAccuracy <= 75 || o.AverageScore >= 70 {
		return Recommendation{}, false
	}
	return Recommendation{
		Title: "Improve Speed Without Sacrificing Accuracy",
		Description: "Your answers are mostly correct but you leave too many questions unattempted. " +
			"Working faster will convert accuracy into score.",
		Priority: PriorityMedium,
		Action:   "Practice timed mock tests to build speed",
		Impact:   "+5-8%",
	}, true
}

// accuracyFirst needs at least one answered question; an empty history
// has no accuracy to judge.
func accuracyFirst(a stats.Analysis, _ []Recommendation) (Recommendation, bool) {
	o := a.Overall
	if o.TotalAttempted == 0 || o.AverageAccuracy >= 60 {
		return Recommendation{}, false
	}
	return Recommendation{
		Title: "Focus on Accuracy First",
		Description: fmt.Sprintf("Your overall accuracy is %.1f%%. "+
			"Slow down and make sure you understand each concept before attempting more questions.", o.AverageAccuracy),
		Priority: PriorityHigh,
		Action:   "Review theory and solve untimed conceptual questions",
		Impact:   "+15-20%",
	}, true
}

func morePractice(a stats.Analysis, _ []Recommendation) (Recommendation, bool) {
	n := a.Overall.TotalTests
	if n >= minTestsForPatterns {
		return Recommendation{}, false
	}
	return Recommendation{
		Title: "Increase Practice Volume",
		Description: fmt.Sprintf("You've taken only %d tests. "+
			"More practice is needed to identify patterns and improve systematically.", n),
		Priority: PriorityMedium,
		Action:   "Target 1-2 tests per day for the next week",
		Impact:   "+5-10%",
	}, true
}

func fineTuning(a stats.Analysis, chosen []Recommendation) (Recommendation, bool) {
	o := a.Overall
	if o.TotalTests == 0 || o.AverageScore < excellentScoreAtLeast || len(chosen) >= fineTuningBelowCount {
		return Recommendation{}, false
	}
	return Recommendation{
		Title: "Excellent Performance - Fine Tuning",
		Description: "You're performing at a high level. " +
			"Focus on eliminating the occasional careless mistake.",
		Priority: PriorityMedium,
		Action:   "Review past mistakes and build error log",
		Impact:   "+2-5%",
	}, true
}
