package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/cache"
	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/store"
)

// addTestFlags registers the test setup flags shared by take and pool.
func addTestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("bank", "", "Question bank JSON file (overrides EXAMPREP_BANK env var)")
	f.StringP("subject", "s", "", "Subject, e.g. Physics")
	f.String("scope", string(exam.ScopeComplete), "complete, subcategorywise or chapterwise")
	f.StringSlice("subcategory", nil, "Subcategory to include (repeatable, subcategorywise scope)")
	f.StringSlice("chapter", nil, "Chapter to include (repeatable, chapterwise scope)")
	f.StringP("difficulty", "d", string(exam.DifficultyMedium), "Easy, Medium or Hard")
	f.String("type", "practice", "Test type label stored with the result")
	f.IntP("minutes", "m", exam.DefaultDurationSeconds/60, "Test duration in minutes")
	_ = cmd.MarkFlagRequired("subject")
}

// testConfigFromFlags builds and validates a configuration, filling in
// the chapters implied by its scope from the syllabus.
func testConfigFromFlags(cmd *cobra.Command) (exam.TestConfiguration, error) {
	f := cmd.Flags()
	subject, _ := f.GetString("subject")
	scope, _ := f.GetString("scope")
	subcategories, _ := f.GetStringSlice("subcategory")
	chapters, _ := f.GetStringSlice("chapter")
	difficulty, _ := f.GetString("difficulty")
	testType, _ := f.GetString("type")
	minutes, _ := f.GetInt("minutes")

	cfg := exam.TestConfiguration{
		Subject:         subject,
		Scope:           exam.Scope(strings.ToLower(scope)),
		Subcategories:   subcategories,
		Chapters:        chapters,
		Difficulty:      string(exam.ParseDifficulty(difficulty)),
		TestType:        testType,
		DurationSeconds: minutes * 60,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	syllabus := catalog.Default()
	if _, ok := syllabus.Subject(subject); !ok {
		if cfg.Scope != exam.ScopeComplete {
			return cfg, fmt.Errorf("subject %q is not in the syllabus; only --scope complete is available", subject)
		}
		return cfg, nil
	}
	return syllabus.Resolve(cfg)
}

func loadBank(cmd *cobra.Command) (*catalog.Bank, error) {
	path, _ := cmd.Flags().GetString("bank")
	if path == "" {
		path = os.Getenv("EXAMPREP_BANK")
	}
	if path == "" {
		return nil, errors.New("no question bank: pass --bank or set EXAMPREP_BANK")
	}
	return catalog.LoadBank(path)
}

// openSnapshots selects where in-progress sessions are kept, from
// --snapshots or EXAMPREP_SNAPSHOT_BACKEND. The returned func releases
// the backend.
func openSnapshots(ctx context.Context, cmd *cobra.Command, s *store.Store) (session.KV, func(), error) {
	backend, _ := cmd.Flags().GetString("snapshots")
	if backend == "" {
		backend = os.Getenv("EXAMPREP_SNAPSHOT_BACKEND")
	}

	switch strings.ToLower(backend) {
	case "", "sqlite", "store":
		return s.SnapshotKV(), func() {}, nil
	case "memory":
		return session.NewMemoryKV(), func() {}, nil
	case "redis":
		cfg, err := cache.ConfigFromEnv()
		if err != nil {
			return nil, nil, fmt.Errorf("redis config: %w", err)
		}
		kv, err := cache.NewRedisKV(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q (want sqlite, redis or memory)", backend)
	}
}

func addSnapshotFlag(cmd *cobra.Command) {
	cmd.Flags().String("snapshots", "", "Where unfinished tests are kept: sqlite, redis or memory (overrides EXAMPREP_SNAPSHOT_BACKEND)")
}
