package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/export"
	"github.com/abhisek/examprep/internal/stats"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect and export finished tests",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.ResultRepo().ListResults(cmd.Context(), userID(cmd), limit)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		fmt.Printf("%-8s  %-16s  %-14s  %-12s  %7s  %9s  %-9s  %s\n",
			"ID", "Completed", "Subject", "Scope", "Score", "Answered", "Time", "Ended by")
		fmt.Println(strings.Repeat("─", 100))
		for _, r := range records {
			fmt.Printf("%-8s  %-16s  %-14s  %-12s  %6.2f%%  %4d/%-4d  %-9s  %s\n",
				truncate(r.ID, 8),
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				truncate(r.Config.Subject, 14),
				r.Config.Scope,
				r.Score,
				r.Attempted, r.TotalQuestions,
				stats.FormatDuration(r.TimeTaken),
				r.Reason,
			)
		}
		return nil
	},
}

var resultsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export results and analysis to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := loadResults(cmd, s, subject)
		if err != nil {
			return err
		}
		if err := export.WriteFile(args[0], records, stats.Analyze(records)); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Exported %d results to %s\n", len(records), args[0])
		return nil
	},
}

func init() {
	resultsListCmd.Flags().IntP("limit", "n", 20, "Number of results to show (0 for all)")
	resultsListCmd.Flags().Bool("json", false, "Print full records as JSON")
	resultsExportCmd.Flags().StringP("subject", "s", "", "Only export results for this subject")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsExportCmd)
}
