package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/session"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Preview the questions a test configuration would draw",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := testConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		bank, err := loadBank(cmd)
		if err != nil {
			return err
		}

		all, err := bank.Questions(cmd.Context(), cfg.Subject)
		if err != nil {
			return err
		}
		pool := session.FilterPool(all, cfg.Difficulty, cfg.Chapters)

		fmt.Printf("Subject:     %s\n", cfg.Subject)
		fmt.Printf("Scope:       %s\n", cfg.Scope)
		if len(cfg.Subcategories) > 0 {
			fmt.Printf("Sections:    %s\n", strings.Join(cfg.Subcategories, ", "))
		}
		fmt.Printf("Difficulty:  %s\n", cfg.Difficulty)
		fmt.Printf("Duration:    %d minutes\n", cfg.DurationSeconds/60)
		fmt.Printf("Questions:   %d of %d in the bank\n", len(pool), len(all))
		if len(pool) == len(all) && (cfg.Difficulty != "" || len(cfg.Chapters) > 0) {
			fmt.Println("             (no question matched the filters; the whole subject is used)")
		}

		byChapter := map[string]int{}
		for _, q := range pool {
			byChapter[q.Chapter]++
		}
		names := make([]string, 0, len(byChapter))
		for ch := range byChapter {
			names = append(names, ch)
		}
		sort.Strings(names)

		fmt.Println()
		fmt.Println(strings.Repeat("─", 60))
		for _, ch := range names {
			fmt.Printf("%-48s  %4d\n", truncate(ch, 48), byChapter[ch])
		}
		return nil
	},
}

var syllabusCmd = &cobra.Command{
	Use:   "syllabus [subject]",
	Short: "List subjects, sections and chapters, with bank coverage when a bank is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		syllabus := catalog.Default()
		subjects := syllabus.Subjects()
		if len(args) == 1 {
			s, ok := syllabus.Subject(args[0])
			if !ok {
				return fmt.Errorf("unknown subject %q (known: %s)", args[0], strings.Join(subjects, ", "))
			}
			subjects = []string{s.Name}
		}

		var counts func(subject string) map[string]int
		if bank, err := loadBank(cmd); err == nil {
			counts = bank.ChapterCounts
		}

		for _, name := range subjects {
			s, _ := syllabus.Subject(name)
			var have map[string]int
			if counts != nil {
				have = counts(s.Name)
			}
			fmt.Println(s.Name)
			for _, sc := range s.Subcategories {
				fmt.Printf("  %s\n", sc.Name)
				for _, ch := range sc.Chapters {
					if have != nil {
						fmt.Printf("    %-48s  %4d\n", truncate(ch, 48), have[ch])
						continue
					}
					fmt.Printf("    %s\n", ch)
				}
			}
		}
		return nil
	},
}

func init() {
	addTestFlags(poolCmd)
	syllabusCmd.Flags().String("bank", "", "Question bank JSON file (overrides EXAMPREP_BANK env var)")
}
