package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/abhisek/examprep/internal/exam"
)

type resultRepo struct {
	db *sqlx.DB
}

func (r *resultRepo) SaveResult(ctx context.Context, userID string, rec exam.ResultRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UserID = userID
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO results
		(id, user_id, session_id, subject, score, submit_reason, completed_at, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, userID, rec.SessionID, rec.Config.Subject, rec.Score,
		string(rec.Reason), rec.CompletedAt.UnixMilli(), string(body))
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}

	if err := updateProfileStats(ctx, tx, userID, rec); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return rec.ID, nil
}

// updateProfileStats folds rec into the user's running statistics. Users
// without a profile are left alone.
func updateProfileStats(ctx context.Context, tx *sqlx.Tx, userID string, rec exam.ResultRecord) error {
	var cur struct {
		TotalTests     int     `db:"total_tests"`
		TotalTimeSpent int     `db:"total_time_spent"`
		AverageScore   float64 `db:"average_score"`
	}
	err := tx.GetContext(ctx, &cur, tx.Rebind(
		`SELECT total_tests, total_time_spent, average_score FROM profiles WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load profile stats: %w", err)
	}

	n := cur.TotalTests + 1
	avg := exam.Round2((cur.AverageScore*float64(n-1) + rec.Score) / float64(n))
	now := time.Now().UnixMilli()

	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE profiles SET
		total_tests = ?, total_time_spent = ?, average_score = ?, last_test_at = ?, updated_at = ?
		WHERE user_id = ?`),
		n, cur.TotalTimeSpent+rec.TimeTaken, avg, rec.CompletedAt.UnixMilli(), now, userID)
	if err != nil {
		return fmt.Errorf("update profile stats: %w", err)
	}
	return nil
}

func (r *resultRepo) ListResults(ctx context.Context, userID string, limit int) ([]exam.ResultRecord, error) {
	query := `SELECT record FROM results WHERE user_id = ? ORDER BY completed_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var bodies []string
	if err := r.db.SelectContext(ctx, &bodies, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	out := make([]exam.ResultRecord, 0, len(bodies))
	for _, b := range bodies {
		var rec exam.ResultRecord
		if err := json.Unmarshal([]byte(b), &rec); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
