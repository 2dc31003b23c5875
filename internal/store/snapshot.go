package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SnapshotKV is a string key-value table for in-progress session state.
// It lets a session survive a process restart on a single machine.
type SnapshotKV struct {
	db *sqlx.DB
}

func (s *SnapshotKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT snap_value FROM local_snapshots WHERE snap_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get snapshot %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SnapshotKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO local_snapshots (snap_key, snap_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (snap_key) DO UPDATE SET snap_value = excluded.snap_value, updated_at = excluded.updated_at`),
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set snapshot %q: %w", key, err)
	}
	return nil
}

func (s *SnapshotKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM local_snapshots WHERE snap_key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

// Prune removes entries not written since before.
func (s *SnapshotKV) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM local_snapshots WHERE updated_at < ?`), before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}
