package store

import (
	"context"
	"time"

	"github.com/abhisek/examprep/internal/exam"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when set
}

// ResultRepo stores finalized result records.
type ResultRepo interface {
	// SaveResult stores rec for userID and returns its id. When the user
	// has a profile its running statistics are updated in the same
	// transaction.
	SaveResult(ctx context.Context, userID string, rec exam.ResultRecord) (string, error)

	// ListResults returns the user's results newest first. limit <= 0
	// returns all of them.
	ListResults(ctx context.Context, userID string, limit int) ([]exam.ResultRecord, error)
}

// Profile is a user's preferences and running statistics.
type Profile struct {
	UserID              string
	DisplayName         string
	FavoriteSubject     string
	PreferredDifficulty string
	StudyGoal           string
	TargetScore         int

	TotalTests     int
	TotalTimeSpent int // seconds
	AverageScore   float64
	LastTestAt     time.Time // zero until the first saved result

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile defaults for newly created users.
const (
	DefaultPreferredDifficulty = "Medium"
	DefaultStudyGoal           = "JEE Main"
	DefaultTargetScore         = 90
)

// ProfilePatch carries the fields to change. Nil fields are left alone.
type ProfilePatch struct {
	DisplayName         *string
	FavoriteSubject     *string
	PreferredDifficulty *string
	StudyGoal           *string
	TargetScore         *int
}

// ProfileRepo reads and writes user profiles.
type ProfileRepo interface {
	// GetProfile returns the profile, or nil if the user has none.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// UpsertProfile creates the profile with defaults if needed and
	// applies patch.
	UpsertProfile(ctx context.Context, userID string, patch ProfilePatch) (*Profile, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
