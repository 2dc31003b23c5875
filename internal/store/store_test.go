package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "sqlite", s.Driver())
}

func TestIsPostgresDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"postgres://u:p@localhost/db", true},
		{"postgresql://localhost/db", true},
		{"/tmp/examprep.db", false},
		{"file:test.db?cache=shared", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPostgresDSN(tt.dsn), tt.dsn)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"results", "profiles", "local_snapshots", "llm_requests"} {
		var name string
		err := s.DB().Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(dir, "custom", "x.db")
		t.Setenv("EXAMPREP_DB", want)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.DirExists(t, filepath.Dir(want))
	})

	t.Run("postgres dsn untouched", func(t *testing.T) {
		t.Setenv("EXAMPREP_DB", "postgres://localhost/examprep")
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/examprep", got)
	})

	t.Run("xdg data home", func(t *testing.T) {
		t.Setenv("EXAMPREP_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "examprep", "examprep.db"), got)
	})
}

func sampleResult(subject string, score float64, timeTaken int, at time.Time) exam.ResultRecord {
	return exam.ResultRecord{
		SessionID:      "sess-" + subject,
		Config:         exam.TestConfiguration{Subject: subject, Scope: exam.ScopeComplete, Difficulty: "Medium", DurationSeconds: 900},
		CompletedAt:    at,
		TotalQuestions: 4,
		Attempted:      3,
		Correct:        2,
		Incorrect:      1,
		Unattempted:    1,
		Score:          score,
		TimeTaken:      timeTaken,
		TimeRemaining:  900 - timeTaken,
		Reason:         exam.ReasonUser,
		Outcomes: []exam.QuestionOutcome{
			{QuestionID: "q1", Chapter: "Kinematics", Difficulty: "Medium", UserAnswer: "A", Correct: true},
			{QuestionID: "q2", Chapter: "Kinematics", Difficulty: "Medium"},
		},
		Integrity: exam.Integrity{Incidents: 1},
	}
}

func TestSaveAndListResults(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i, subj := range []string{"Physics", "Chemistry", "Mathematics"} {
		id, err := repo.SaveResult(ctx, "u1", sampleResult(subj, float64(50+i*10), 600, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		require.NotEmpty(t, id)
		ids = append(ids, id)
	}
	_, err := repo.SaveResult(ctx, "u2", sampleResult("Physics", 99, 100, base))
	require.NoError(t, err)

	all, err := repo.ListResults(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Mathematics", all[0].Config.Subject, "newest first")
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, "u1", all[0].UserID)
	assert.Equal(t, 70.0, all[0].Score)
	assert.Len(t, all[0].Outcomes, 2)
	assert.Equal(t, 1, all[0].Integrity.Incidents)
	assert.True(t, all[0].CompletedAt.Equal(base.Add(2*time.Hour)))

	limited, err := repo.ListResults(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "Chemistry", limited[1].Config.Subject)

	none, err := repo.ListResults(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveResult_KeepsProvidedID(t *testing.T) {
	s := openTestStore(t)
	rec := sampleResult("Physics", 50, 300, time.Now())
	rec.ID = "fixed-id"

	id, err := s.ResultRepo().SaveResult(context.Background(), "u1", rec)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestProfileDefaultsAndPatch(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	p, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)

	name := "Asha"
	p, err = repo.UpsertProfile(ctx, "u1", ProfilePatch{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.DisplayName)
	assert.Equal(t, DefaultPreferredDifficulty, p.PreferredDifficulty)
	assert.Equal(t, DefaultStudyGoal, p.StudyGoal)
	assert.Equal(t, DefaultTargetScore, p.TargetScore)

	target := 95
	goal := "JEE Advanced"
	_, err = repo.UpsertProfile(ctx, "u1", ProfilePatch{TargetScore: &target, StudyGoal: &goal})
	require.NoError(t, err)

	p, err = repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Asha", p.DisplayName, "untouched by second patch")
	assert.Equal(t, 95, p.TargetScore)
	assert.Equal(t, "JEE Advanced", p.StudyGoal)
	assert.True(t, p.LastTestAt.IsZero())
}

func TestSaveResult_UpdatesProfileRunningAverage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.ProfileRepo().UpsertProfile(ctx, "u1", ProfilePatch{})
	require.NoError(t, err)

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, score := range []float64{50, 75, 80} {
		_, err := s.ResultRepo().SaveResult(ctx, "u1", sampleResult("Physics", score, 600, at))
		require.NoError(t, err)
	}

	p, err := s.ProfileRepo().GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalTests)
	assert.Equal(t, 1800, p.TotalTimeSpent)
	// ((50+75)/2 = 62.5; (62.5*2+80)/3 = 68.333...) rounded to 68.33
	assert.Equal(t, 68.33, p.AverageScore)
	assert.True(t, p.LastTestAt.Equal(at))
}

func TestSaveResult_NoProfileIsFine(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.ResultRepo().SaveResult(ctx, "ghost", sampleResult("Physics", 40, 60, time.Now()))
	require.NoError(t, err)

	p, err := s.ProfileRepo().GetProfile(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, p, "saving a result must not create a profile")
}

func TestSnapshotKV(t *testing.T) {
	s := openTestStore(t)
	kv := s.SnapshotKV()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "examprep:u1:answers")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "examprep:u1:answers", `{"0":"A"}`))
	require.NoError(t, kv.Set(ctx, "examprep:u1:answers", `{"0":"B"}`))
	require.NoError(t, kv.Set(ctx, "examprep:u1:index", "2"))
	require.NoError(t, kv.Set(ctx, "examprep:u2:index", "1"))

	v, ok, err := kv.Get(ctx, "examprep:u1:answers")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"0":"B"}`, v, "set overwrites")

	require.NoError(t, kv.Delete(ctx, "examprep:u1:answers", "examprep:u1:index", "missing"))
	_, ok, _ = kv.Get(ctx, "examprep:u1:index")
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, "examprep:u2:index")
	assert.True(t, ok, "other users untouched")

	require.NoError(t, kv.Delete(ctx))

	n, err := kv.Prune(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash-exp", Purpose: "recommendations", Success: false, ErrorMessage: "model unavailable", LatencyMs: 10},
		{Provider: "gemini", Model: "gemini-1.5-flash", Purpose: "recommendations", InputTokens: 100, OutputTokens: 50, LatencyMs: 30, Success: true, RequestBody: "[user]\nhi", ResponseBody: "[]"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "status-check", InputTokens: 5, OutputTokens: 1, LatencyMs: 20, Success: true},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "gpt-4o-mini", got[0].Model, "newest first")

	recs, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "recommendations", Limit: 1})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "gemini-1.5-flash", recs[0].Model)

	one, err := repo.GetLLMEvent(ctx, recs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.True(t, one.Success)
	assert.Equal(t, "[user]\nhi", one.RequestBody)
	assert.Equal(t, "[]", one.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "recommendations", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 100, byPurpose[0].InputTokens)
	assert.Equal(t, int64(20), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	assert.Len(t, byModel, 3)
}
