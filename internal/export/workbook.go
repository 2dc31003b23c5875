// Package export writes result history and its analysis to an Excel
// workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/stats"
)

// Sheet names in workbook order.
const (
	SheetSummary    = "Summary"
	SheetResults    = "Results"
	SheetChapters   = "Chapters"
	SheetDifficulty = "Difficulty"
)

const dateLayout = "2006-01-02 15:04"

// Workbook builds a workbook from results (any order) and their analysis.
// The caller owns the returned file and must Close it.
func Workbook(results []exam.ResultRecord, a stats.Analysis) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := build(f, results, a); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook as .xlsx to w.
func Write(w io.Writer, results []exam.ResultRecord, a stats.Analysis) error {
	f, err := Workbook(results, a)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook to path.
func WriteFile(path string, results []exam.ResultRecord, a stats.Analysis) error {
	f, err := Workbook(results, a)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func build(f *excelize.File, results []exam.ResultRecord, a stats.Analysis) error {
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{SheetResults, SheetChapters, SheetDifficulty} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summaryRows(a)},
		{SheetResults, resultRows(results)},
		{SheetChapters, chapterRows(a.Chapters)},
		{SheetDifficulty, difficultyRows(a.Difficulty)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows, header); err != nil {
			return err
		}
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", last, 16)
}

func summaryRows(a stats.Analysis) [][]any {
	o := a.Overall
	return [][]any{
		{"Metric", "Value"},
		{"Tests taken", o.TotalTests},
		{"Average score (%)", o.AverageScore},
		{"Average accuracy (%)", o.AverageAccuracy},
		{"Highest score (%)", o.HighestScore},
		{"Lowest score (%)", o.LowestScore},
		{"Questions attempted", o.TotalAttempted},
		{"Correct answers", o.TotalCorrect},
		{"Time spent", stats.FormatDuration(o.TotalTimeSpent)},
		{"Weak chapters", len(a.WeakChapters)},
		{"Strong chapters", len(a.StrongChapters)},
	}
}

func resultRows(results []exam.ResultRecord) [][]any {
	rows := [][]any{{
		"Completed", "Subject", "Scope", "Difficulty", "Score (%)", "Questions",
		"Correct", "Incorrect", "Unattempted", "Marked", "Time taken", "Ended by", "Incidents",
	}}
	for _, r := range results {
		rows = append(rows, []any{
			r.CompletedAt.Local().Format(dateLayout),
			r.Config.Subject,
			string(r.Config.Scope),
			r.Config.Difficulty,
			r.Score,
			r.TotalQuestions,
			r.Correct,
			r.Incorrect,
			r.Unattempted,
			r.Marked,
			stats.FormatDuration(r.TimeTaken),
			string(r.Reason),
			r.Integrity.Incidents,
		})
	}
	return rows
}

func chapterRows(chapters []stats.ChapterStats) [][]any {
	rows := [][]any{{"Chapter", "Questions", "Correct", "Incorrect", "Accuracy (%)", "Band"}}
	for _, c := range chapters {
		rows = append(rows, []any{c.Chapter, c.Total, c.Correct, c.Incorrect, c.Accuracy, band(c)})
	}
	return rows
}

func band(c stats.ChapterStats) string {
	if c.Total < stats.MinChapterQuestions {
		return "insufficient data"
	}
	switch {
	case c.Accuracy < stats.WeakAccuracyBelow:
		return "weak"
	case c.Accuracy > stats.StrongAccuracyAbove:
		return "strong"
	default:
		return "average"
	}
}

func difficultyRows(ds []stats.DifficultyStats) [][]any {
	rows := [][]any{{"Difficulty", "Questions", "Attempted", "Correct", "Accuracy (%)"}}
	for _, d := range ds {
		rows = append(rows, []any{string(d.Difficulty), d.Total, d.Attempted(), d.Correct, d.Accuracy})
	}
	return rows
}
