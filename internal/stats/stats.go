// Package stats aggregates finished results into dashboard statistics.
// Every function is pure and recomputes from its input; percentages are
// rounded to two decimals only when published.
package stats

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/examprep/internal/exam"
)

const (
	WeakAccuracyBelow   = 60.0
	StrongAccuracyAbove = 80.0
	MinChapterQuestions = 3
	MaxListed           = 5
	TrendLength         = 10
)

// Overall summarizes every result.
type Overall struct {
	TotalTests      int     `json:"totalTests"`
	AverageScore    float64 `json:"averageScore"`
	AverageAccuracy float64 `json:"averageAccuracy"`
	HighestScore    float64 `json:"highestScore"`
	LowestScore     float64 `json:"lowestScore"`
	TotalTimeSpent  int     `json:"totalTimeSpent"`
	TotalAttempted  int     `json:"totalQuestionsAttempted"`
	TotalCorrect    int     `json:"totalCorrect"`
}

// SubjectStats groups results by configured subject.
type SubjectStats struct {
	Subject        string  `json:"subject"`
	TestsTaken     int     `json:"testsTaken"`
	TotalScore     float64 `json:"totalScore"`
	TotalQuestions int     `json:"totalQuestions"`
	Correct        int     `json:"totalCorrect"`
	Incorrect      int     `json:"totalIncorrect"`
	Unattempted    int     `json:"totalUnattempted"`
	AverageScore   float64 `json:"averageScore"`

	// Accuracy excludes unattempted questions from the denominator.
	Accuracy float64 `json:"accuracy"`
}

// ChapterStats is per-chapter accuracy over answered questions. Total
// counts every question seen, answered or not.
type ChapterStats struct {
	Chapter   string  `json:"chapter"`
	Total     int     `json:"totalQuestions"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

// DifficultyStats has the same shape as ChapterStats, keyed by bucket.
type DifficultyStats struct {
	Difficulty exam.Difficulty `json:"difficulty"`
	Total      int             `json:"total"`
	Correct    int             `json:"correct"`
	Incorrect  int             `json:"incorrect"`
	Accuracy   float64         `json:"accuracy"`
}

// Attempted is the number of answered questions in the bucket.
func (d DifficultyStats) Attempted() int { return d.Correct + d.Incorrect }

// TrendPoint is one result projected for charting.
type TrendPoint struct {
	TestNumber int       `json:"testNumber"`
	Score      float64   `json:"score"`
	Accuracy   float64   `json:"accuracy"`
	Date       time.Time `json:"date"`
}

// Analysis bundles every projection.
type Analysis struct {
	Overall        Overall           `json:"overall"`
	Subjects       []SubjectStats    `json:"subjects"`
	Chapters       []ChapterStats    `json:"chapters"`
	WeakChapters   []ChapterStats    `json:"weakChapters"`
	StrongChapters []ChapterStats    `json:"strongChapters"`
	Difficulty     []DifficultyStats `json:"difficulty"`
	Trend          []TrendPoint      `json:"trend"`
}

// Analyze computes every projection from records.
func Analyze(records []exam.ResultRecord) Analysis {
	chapters := ComputeChapters(records)
	return Analysis{
		Overall:        ComputeOverall(records),
		Subjects:       ComputeSubjects(records),
		Chapters:       chapters,
		WeakChapters:   WeakChapters(chapters),
		StrongChapters: StrongChapters(chapters),
		Difficulty:     ComputeDifficulty(records),
		Trend:          ComputeTrend(records, TrendLength),
	}
}

// ComputeOverall returns totals and averages across all records.
func ComputeOverall(records []exam.ResultRecord) Overall {
	var o Overall
	if len(records) == 0 {
		return o
	}

	var totalScore float64
	highest, lowest := records[0].Score, records[0].Score
	for _, r := range records {
		totalScore += r.Score
		highest = max(highest, r.Score)
		lowest = min(lowest, r.Score)
		o.TotalTimeSpent += r.TimeTaken
		o.TotalAttempted += r.Attempted
		o.TotalCorrect += r.Correct
	}

	o.TotalTests = len(records)
	o.AverageScore = exam.Round2(totalScore / float64(len(records)))
	o.AverageAccuracy = exam.Round2(exam.Percent(o.TotalCorrect, o.TotalAttempted))
	o.HighestScore = exam.Round2(highest)
	o.LowestScore = exam.Round2(lowest)
	return o
}

// ComputeSubjects groups by subject, sorted by subject name.
func ComputeSubjects(records []exam.ResultRecord) []SubjectStats {
	bySubject := map[string]*SubjectStats{}
	for _, r := range records {
		s, ok := bySubject[r.Config.Subject]
		if !ok {
			s = &SubjectStats{Subject: r.Config.Subject}
			bySubject[r.Config.Subject] = s
		}
		s.TestsTaken++
		s.TotalScore += r.Score
		s.TotalQuestions += r.TotalQuestions
		s.Correct += r.Correct
		s.Incorrect += r.Incorrect
		s.Unattempted += r.Unattempted
	}

	out := make([]SubjectStats, 0, len(bySubject))
	for _, s := range bySubject {
		s.AverageScore = exam.Round2(s.TotalScore / float64(s.TestsTaken))
		s.Accuracy = exam.Round2(exam.Percent(s.Correct, s.TotalQuestions-s.Unattempted))
		s.TotalScore = exam.Round2(s.TotalScore)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

// ComputeChapters derives per-chapter accuracy from question outcomes,
// weakest first. Ties are ordered by chapter name.
func ComputeChapters(records []exam.ResultRecord) []ChapterStats {
	byChapter := map[string]*ChapterStats{}
	for _, r := range records {
		for _, o := range r.Outcomes {
			c, ok := byChapter[o.Chapter]
			if !ok {
				c = &ChapterStats{Chapter: o.Chapter}
				byChapter[o.Chapter] = c
			}
			c.Total++
			switch {
			case o.Correct:
				c.Correct++
			case o.Attempted():
				c.Incorrect++
			}
		}
	}

	out := make([]ChapterStats, 0, len(byChapter))
	for _, c := range byChapter {
		c.Accuracy = exam.Round2(exam.Percent(c.Correct, c.Correct+c.Incorrect))
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy < out[j].Accuracy
		}
		return out[i].Chapter < out[j].Chapter
	})
	return out
}

// WeakChapters keeps chapters under 60% with at least three questions,
// weakest first, at most five. chapters must be in ComputeChapters order.
func WeakChapters(chapters []ChapterStats) []ChapterStats {
	var out []ChapterStats
	for _, c := range chapters {
		if c.Accuracy < WeakAccuracyBelow && c.Total >= MinChapterQuestions {
			out = append(out, c)
		}
		if len(out) == MaxListed {
			break
		}
	}
	return out
}

// StrongChapters keeps chapters over 80% with at least three questions,
// strongest first, at most five.
func StrongChapters(chapters []ChapterStats) []ChapterStats {
	var out []ChapterStats
	for _, c := range chapters {
		if c.Accuracy > StrongAccuracyAbove && c.Total >= MinChapterQuestions {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Accuracy > out[j].Accuracy })
	if len(out) > MaxListed {
		out = out[:MaxListed]
	}
	return out
}

// ComputeDifficulty buckets outcomes as Easy, Medium and Hard, in that
// order. Unrecognized labels count as Medium.
func ComputeDifficulty(records []exam.ResultRecord) []DifficultyStats {
	out := make([]DifficultyStats, len(exam.Difficulties))
	idx := make(map[exam.Difficulty]int, len(exam.Difficulties))
	for i, d := range exam.Difficulties {
		out[i].Difficulty = d
		idx[d] = i
	}
	for _, r := range records {
		for _, o := range r.Outcomes {
			b := &out[idx[exam.ParseDifficulty(o.Difficulty)]]
			b.Total++
			switch {
			case o.Correct:
				b.Correct++
			case o.Attempted():
				b.Incorrect++
			}
		}
	}
	for i := range out {
		out[i].Accuracy = exam.Round2(exam.Percent(out[i].Correct, out[i].Attempted()))
	}
	return out
}

// ComputeTrend returns the n most recent records in chronological order.
// Records are ordered by completion time, so the input may be newest-first.
func ComputeTrend(records []exam.ResultRecord, n int) []TrendPoint {
	sorted := slices.Clone(records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.Before(sorted[j].CompletedAt)
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}

	out := make([]TrendPoint, len(sorted))
	for i, r := range sorted {
		out[i] = TrendPoint{
			TestNumber: i + 1,
			Score:      r.Score,
			Accuracy:   exam.Round2(exam.Percent(r.Correct, r.Attempted)),
			Date:       r.CompletedAt,
		}
	}
	return out
}

// Subject returns the stats for one subject, case-insensitively.
func (a Analysis) Subject(name string) (SubjectStats, bool) {
	for _, s := range a.Subjects {
		if strings.EqualFold(s.Subject, name) {
			return s, true
		}
	}
	return SubjectStats{}, false
}
