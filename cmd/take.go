package cmd

import (
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/screens/take"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/stats"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take a timed test in the terminal",
	Long: "Runs a timed test from the question bank in a full-screen terminal UI. Progress is saved " +
		"after every answer, so an interrupted test continues where it stopped when started again " +
		"with the same options. Switching away from the terminal counts as leaving the test.",
	RunE: runTake,
}

func runTake(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := testConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	bank, err := loadBank(cmd)
	if err != nil {
		return err
	}
	resumeFlag, _ := cmd.Flags().GetString("resume")
	policy, err := session.ParseResumePolicy(resumeFlag)
	if err != nil {
		return err
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	kv, closeKV, err := openSnapshots(ctx, cmd, s)
	if err != nil {
		return err
	}
	defer closeKV()

	events := take.NewEvents()
	opts := session.Options{
		UserID:    userID(cmd),
		Config:    cfg,
		Bank:      bank,
		Snapshots: kv,
		Results:   s.ResultRepo(),
		Resume:    policy,
	}
	events.Attach(&opts)

	ctl, err := session.Start(ctx, opts)
	if err != nil {
		return err
	}
	defer ctl.Close()
	defer events.Close()

	final, err := tea.NewProgram(take.New(ctx, ctl, events)).Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}

	m, ok := final.(*take.Model)
	if !ok {
		return nil
	}
	if rec, ok := m.Result(); ok {
		printResult(rec)
		return nil
	}
	fmt.Println("Progress saved. Run the same command again to continue.")
	return nil
}

func printResult(rec exam.ResultRecord) {
	fmt.Println()
	fmt.Println("Result")
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Score:       %.2f%%\n", rec.Score)
	fmt.Printf("Correct:     %d\n", rec.Correct)
	fmt.Printf("Incorrect:   %d\n", rec.Incorrect)
	fmt.Printf("Unanswered:  %d\n", rec.Unattempted)
	fmt.Printf("Time taken:  %s\n", stats.FormatDuration(rec.TimeTaken))
	if rec.Integrity.Incidents > 0 {
		fmt.Printf("Incidents:   %d\n", rec.Integrity.Incidents)
	}
	fmt.Println("Run `examprep stats` or `examprep recommend` to see how you are doing.")
}

func init() {
	addTestFlags(takeCmd)
	addSnapshotFlag(takeCmd)
	takeCmd.Flags().String("resume", "deadline", "Time given back to a resumed test: deadline, last-tick or restart")
}
