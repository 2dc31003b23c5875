package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/recommend"
	"github.com/abhisek/examprep/internal/stats"
	"github.com/abhisek/examprep/internal/store"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest what to study next",
	Long: "Builds study recommendations from your results. Configured language models are tried " +
		"in order; when none is configured or all fail, fixed rules are used instead.",
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

		engine, err := newEngine(cmd.Context(), s)
		if err != nil {
			return err
		}
		res := engine.Generate(cmd.Context(), stats.Analyze(records))

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printRecommendations(res)
		return nil
	},
}

var recommendStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which recommendation mode is active",
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		engine, err := newEngine(cmd.Context(), s)
		if err != nil {
			return err
		}
		st := engine.Status()

		mode := "Fallback (rule-based)"
		if st.Ready {
			mode = "AI-powered"
		}
		fmt.Printf("Mode:     %s\n", mode)
		fmt.Printf("Models:   %d\n", len(st.Models))
		for i, m := range st.Models {
			fmt.Printf("  %d. %s\n", i+1, m)
		}
		fmt.Printf("Message:  %s\n", st.Message)

		if check && st.Ready {
			model, err := engine.Check(cmd.Context())
			if err != nil {
				fmt.Printf("Check:    failed (%v)\n", err)
				return nil
			}
			fmt.Printf("Check:    %s answered\n", model)
		}
		return nil
	},
}

// newEngine builds the model chain from the environment, logging every
// call into the store.
func newEngine(ctx context.Context, s *store.Store) (*recommend.Engine, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("llm config: %w", err)
	}
	chain, err := llm.NewChain(ctx, cfg, s.EventRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: LLM providers unavailable:", err)
		chain = nil
	}
	return recommend.New(chain, recommend.OptionsFromLLM(cfg)), nil
}

func printRecommendations(res recommend.Result) {
	source := "rule-based"
	if res.Source == recommend.SourceAI {
		source = "AI (" + res.Model + ")"
	}
	fmt.Printf("Recommendations: %s\n", source)
	if res.Note != "" {
		fmt.Println(res.Note)
	}
	fmt.Println(strings.Repeat("─", 60))
	for i, r := range res.Recommendations {
		fmt.Printf("%d. [%s] %s\n", i+1, r.Priority, r.Title)
		fmt.Printf("   %s\n", r.Description)
		if r.Action != "" {
			fmt.Printf("   Action: %s\n", r.Action)
		}
		if r.Impact != "" {
			fmt.Printf("   Impact: %s\n", r.Impact)
		}
	}
}

func init() {
	recommendCmd.Flags().StringP("subject", "s", "", "Only include results for this subject")
	recommendCmd.Flags().Bool("json", false, "Print the result as JSON")
	recommendStatusCmd.Flags().Bool("check", false, "Send a minimal request to check the models answer")

	recommendCmd.AddCommand(recommendStatusCmd)
}
