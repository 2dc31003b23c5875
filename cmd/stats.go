package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/stats"
	"github.com/abhisek/examprep/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := loadResults(cmd, s, subject)
		if err != nil {
			return err
		}
		a := stats.Analyze(records)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				stats.Analysis
				Insights []stats.Insight `json:"insights"`
			}{a, stats.Insights(a)})
		}

		if a.Overall.TotalTests == 0 {
			fmt.Println("No results yet. Take a test with `examprep take`.")
			return nil
		}
		printAnalysis(a)
		return nil
	},
}

// loadResults returns every result for the current user, optionally
// restricted to one subject.
func loadResults(cmd *cobra.Command, s *store.Store, subject string) ([]exam.ResultRecord, error) {
	records, err := s.ResultRepo().ListResults(cmd.Context(), userID(cmd), 0)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if subject == "" {
		return records, nil
	}
	var out []exam.ResultRecord
	for _, r := range records {
		if strings.EqualFold(r.Config.Subject, subject) {
			out = append(out, r)
		}
	}
	return out, nil
}

func printAnalysis(a stats.Analysis) {
	sep := strings.Repeat("─", 60)
	o := a.Overall

	fmt.Println("Overall")
	fmt.Println(sep)
	fmt.Printf("Tests taken:     %d\n", o.TotalTests)
	fmt.Printf("Average score:   %.2f%%\n", o.AverageScore)
	fmt.Printf("Accuracy:        %.2f%%\n", o.AverageAccuracy)
	fmt.Printf("Highest/lowest:  %.2f%% / %.2f%%\n", o.HighestScore, o.LowestScore)
	fmt.Printf("Questions:       %d correct of %d attempted\n", o.TotalCorrect, o.TotalAttempted)
	fmt.Printf("Time spent:      %s\n", stats.FormatDuration(o.TotalTimeSpent))

	fmt.Println()
	fmt.Println("Subjects")
	fmt.Println(sep)
	fmt.Printf("%-20s  %5s  %9s  %9s\n", "Subject", "Tests", "Avg", "Accuracy")
	for _, sub := range a.Subjects {
		fmt.Printf("%-20s  %5d  %8.2f%%  %8.2f%%\n", truncate(sub.Subject, 20), sub.TestsTaken, sub.AverageScore, sub.Accuracy)
	}

	printChapters("Weak chapters (< 60%)", a.WeakChapters)
	printChapters("Strong chapters (> 80%)", a.StrongChapters)

	fmt.Println()
	fmt.Println("Difficulty")
	fmt.Println(sep)
	for _, d := range a.Difficulty {
		fmt.Printf("%-8s  %7.2f%%  (%d/%d answered correctly)\n", d.Difficulty, d.Accuracy, d.Correct, d.Attempted())
	}

	fmt.Println()
	fmt.Println("Recent tests")
	fmt.Println(sep)
	for _, p := range a.Trend {
		fmt.Printf("#%-3d  %s  score %6.2f%%  accuracy %6.2f%%\n",
			p.TestNumber, p.Date.Local().Format("2006-01-02 15:04"), p.Score, p.Accuracy)
	}

	if ins := stats.Insights(a); len(ins) > 0 {
		fmt.Println()
		fmt.Println("Insights")
		fmt.Println(sep)
		for _, in := range ins {
			fmt.Printf("- %s: %s\n", in.Title, in.Description)
		}
	}
}

func printChapters(title string, chapters []stats.ChapterStats) {
	if len(chapters) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(title)
	fmt.Println(strings.Repeat("─", 60))
	for _, c := range chapters {
		fmt.Printf("%-36s  %7.2f%%  (%d questions)\n", truncate(c.Chapter, 36), c.Accuracy, c.Total)
	}
}

func init() {
	statsCmd.Flags().StringP("subject", "s", "", "Only include results for this subject")
	statsCmd.Flags().Bool("json", false, "Print the analysis as JSON")
}
