package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type profileRepo struct {
	db *sqlx.DB
}

type profileRow struct {
	UserID              string        `db:"user_id"`
	DisplayName         string        `db:"display_name"`
	FavoriteSubject     string        `db:"favorite_subject"`
	PreferredDifficulty string        `db:"preferred_difficulty"`
	StudyGoal           string        `db:"study_goal"`
	TargetScore         int           `db:"target_score"`
	TotalTests          int           `db:"total_tests"`
	TotalTimeSpent      int           `db:"total_time_spent"`
	AverageScore        float64       `db:"average_score"`
	LastTestAt          sql.NullInt64 `db:"last_test_at"`
	CreatedAt           int64         `db:"created_at"`
	UpdatedAt           int64         `db:"updated_at"`
}

func (r profileRow) toProfile() *Profile {
	p := &Profile{
		UserID:              r.UserID,
		DisplayName:         r.DisplayName,
		FavoriteSubject:     r.FavoriteSubject,
		PreferredDifficulty: r.PreferredDifficulty,
		StudyGoal:           r.StudyGoal,
		TargetScore:         r.TargetScore,
		TotalTests:          r.TotalTests,
		TotalTimeSpent:      r.TotalTimeSpent,
		AverageScore:        r.AverageScore,
		CreatedAt:           time.UnixMilli(r.CreatedAt),
		UpdatedAt:           time.UnixMilli(r.UpdatedAt),
	}
	if r.LastTestAt.Valid {
		p.LastTestAt = time.UnixMilli(r.LastTestAt.Int64)
	}
	return p
}

const profileColumns = `user_id, display_name, favorite_subject, preferred_difficulty, study_goal,
	target_score, total_tests, total_time_spent, average_score, last_test_at, created_at, updated_at`

func (r *profileRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return getProfile(ctx, r.db, userID)
}

// queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

func getProfile(ctx context.Context, q queryer, userID string) (*Profile, error) {
	var row profileRow
	err := sqlx.GetContext(ctx, q, &row,
		q.Rebind(`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return row.toProfile(), nil
}

func (r *profileRepo) UpsertProfile(ctx context.Context, userID string, patch ProfilePatch) (*Profile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p, err := getProfile(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	created := p == nil
	if created {
		p = &Profile{
			UserID:              userID,
			PreferredDifficulty: DefaultPreferredDifficulty,
			StudyGoal:           DefaultStudyGoal,
			TargetScore:         DefaultTargetScore,
			CreatedAt:           now,
		}
	}
	patch.apply(p)
	p.UpdatedAt = now

	if created {
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO profiles
			(user_id, display_name, favorite_subject, preferred_difficulty, study_goal, target_score, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			p.UserID, p.DisplayName, p.FavoriteSubject, p.PreferredDifficulty, p.StudyGoal, p.TargetScore,
			p.CreatedAt.UnixMilli(), p.UpdatedAt.UnixMilli())
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE profiles SET
			display_name = ?, favorite_subject = ?, preferred_difficulty = ?, study_goal = ?, target_score = ?, updated_at = ?
			WHERE user_id = ?`),
			p.DisplayName, p.FavoriteSubject, p.PreferredDifficulty, p.StudyGoal, p.TargetScore,
			p.UpdatedAt.UnixMilli(), p.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("write profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

func (pp ProfilePatch) apply(p *Profile) {
	if pp.DisplayName != nil {
		p.DisplayName = *pp.DisplayName
	}
	if pp.FavoriteSubject != nil {
		p.FavoriteSubject = *pp.FavoriteSubject
	}
	if pp.PreferredDifficulty != nil {
		p.PreferredDifficulty = *pp.PreferredDifficulty
	}
	if pp.StudyGoal != nil {
		p.StudyGoal = *pp.StudyGoal
	}
	if pp.TargetScore != nil {
		p.TargetScore = *pp.TargetScore
	}
}
