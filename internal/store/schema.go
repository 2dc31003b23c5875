package store

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Timestamps are stored as unix milliseconds so both dialects share one
// schema. {{serial}} expands to the dialect's auto-increment key.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		score DOUBLE PRECISION NOT NULL DEFAULT 0,
		submit_reason TEXT NOT NULL DEFAULT '',
		completed_at BIGINT NOT NULL,
		record TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_results_user_completed ON results (user_id, completed_at)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		favorite_subject TEXT NOT NULL DEFAULT '',
		preferred_difficulty TEXT NOT NULL DEFAULT 'Medium',
		study_goal TEXT NOT NULL DEFAULT 'JEE Main',
		target_score INTEGER NOT NULL DEFAULT 90,
		total_tests INTEGER NOT NULL DEFAULT 0,
		total_time_spent INTEGER NOT NULL DEFAULT 0,
		average_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_test_at BIGINT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS local_snapshots (
		snap_key TEXT PRIMARY KEY,
		snap_value TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id {{serial}},
		created_at BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

func migrate(db *sqlx.DB, driver string) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{serial}}", serial)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
