package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examprep",
	Short: "Timed exam practice with performance analytics",
	Long: "examprep runs timed, integrity-monitored practice tests, keeps a history of results " +
		"and turns it into statistics and study recommendations.",
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// DSN (overrides EXAMPREP_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before running (missing file is ignored)")
	rootCmd.PersistentFlags().StringP("user", "u", "local", "User whose results and profile are used")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(poolCmd)
	rootCmd.AddCommand(syllabusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile applies the dotenv file without overriding variables that
// are already set.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// resolveDBPath returns the database DSN using --db flag (highest priority),
// then EXAMPREP_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if store.IsPostgresDSN(p) {
			return p, nil
		}
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func userID(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}
