package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/stats"
	"github.com/abhisek/examprep/internal/store"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile and its running statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.ProfileRepo().GetProfile(cmd.Context(), userID(cmd))
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		if p == nil {
			fmt.Printf("No profile for %q. Create one with `examprep profile set`.\n", userID(cmd))
			return nil
		}
		printProfile(p)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create the profile or update its preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch store.ProfilePatch
		flags := cmd.Flags()
		if flags.Changed("name") {
			v, _ := flags.GetString("name")
			patch.DisplayName = &v
		}
		if flags.Changed("favorite-subject") {
			v, _ := flags.GetString("favorite-subject")
			patch.FavoriteSubject = &v
		}
		if flags.Changed("difficulty") {
			v, _ := flags.GetString("difficulty")
			d := string(exam.ParseDifficulty(v))
			patch.PreferredDifficulty = &d
		}
		if flags.Changed("goal") {
			v, _ := flags.GetString("goal")
			patch.StudyGoal = &v
		}
		if flags.Changed("target") {
			v, _ := flags.GetInt("target")
			if v < 0 || v > 100 {
				return fmt.Errorf("target score must be between 0 and 100, got %d", v)
			}
			patch.TargetScore = &v
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.ProfileRepo().UpsertProfile(cmd.Context(), userID(cmd), patch)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		printProfile(p)
		return nil
	},
}

func printProfile(p *store.Profile) {
	fmt.Printf("User:        %s\n", p.UserID)
	if p.DisplayName != "" {
		fmt.Printf("Name:        %s\n", p.DisplayName)
	}
	if p.FavoriteSubject != "" {
		fmt.Printf("Favorite:    %s\n", p.FavoriteSubject)
	}
	fmt.Printf("Difficulty:  %s\n", p.PreferredDifficulty)
	fmt.Printf("Goal:        %s (target %d%%)\n", p.StudyGoal, p.TargetScore)
	fmt.Printf("Tests:       %d\n", p.TotalTests)
	fmt.Printf("Average:     %.2f%%\n", p.AverageScore)
	fmt.Printf("Time spent:  %s\n", stats.FormatDuration(p.TotalTimeSpent))
	if !p.LastTestAt.IsZero() {
		fmt.Printf("Last test:   %s\n", p.LastTestAt.Local().Format("2006-01-02 15:04"))
	}
}

func init() {
	profileSetCmd.Flags().String("name", "", "Display name")
	profileSetCmd.Flags().String("favorite-subject", "", "Favorite subject")
	profileSetCmd.Flags().String("difficulty", "", "Preferred difficulty (Easy, Medium, Hard)")
	profileSetCmd.Flags().String("goal", "", "Study goal, e.g. \"JEE Main\"")
	profileSetCmd.Flags().Int("target", 0, "Target score percentage")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}
