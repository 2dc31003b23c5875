package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/stats"
)

const replyArray = `[
  {"title": "Master Optics", "description": "Accuracy is low.", "priority": "High", "actionable": "Solve 10 questions", "estimatedImpact": "+10%"},
  {"title": "Keep Going", "description": "Nice trend.", "priority": "Low", "actionable": "Weekly test"}
]`

func quietOptions() Options {
	return Silent(Options{Timeout: time.Second})
}

func sampleAnalysis() stats.Analysis {
	return stats.Analysis{
		Overall: stats.Overall{TotalTests: 6, AverageScore: 62, AverageAccuracy: 70, TotalAttempted: 60, TotalCorrect: 42},
		WeakChapters: []stats.ChapterStats{
			{Chapter: "Optics", Total: 8, Correct: 3, Incorrect: 5, Accuracy: 37.5},
		},
	}
}

func TestParseReplyForms(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bare", replyArray},
		{"json fence", "```json\n" + replyArray + "\n```"},
		{"generic fence", "```\n" + replyArray + "\n```"},
		{"prose", "Here are your recommendations:\n" + replyArray + "\nGood luck!"},
		{"prose with asides", "Based on your scores [see below]:\n" + replyArray + "\nRetest in [2] days."},
		{"two arrays", "Here you go:\n" + replyArray + "\nIf time allows:\n" +
			`[{"title": "Extra", "description": "More.", "priority": "Low"}]`},
		{"data array first", `Your weakest chapters: [{"chapter": "Optics", "accuracy": 40}]` + "\n" + replyArray},
	}

	want, err := ParseReply(replyArray)
	require.NoError(t, err)
	require.Len(t, want, 2)
	assert.Equal(t, "Master Optics", want[0].Title)
	assert.Equal(t, PriorityHigh, want[0].Priority)
	assert.Equal(t, "Solve 10 questions", want[0].Action)
	assert.Equal(t, "+10%", want[0].Impact)
	assert.Empty(t, want[1].Impact)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.text)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestEmbeddedArrays(t *testing.T) {
	text := `Scores [see note] are in. [1, 2] [{"a": 1}] then [ {"b": [2]} ] end]`
	assert.Equal(t, []string{`[{"a": 1}]`, `[ {"b": [2]} ]`}, embeddedArrays(text))
	assert.Empty(t, embeddedArrays("no arrays [here"))
}

func TestParseReplyRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"prose only", "I cannot help with that."},
		{"object", `{"title": "x", "description": "y", "priority": "High"}`},
		{"empty array", `[]`},
		{"missing title", `[{"description": "y", "priority": "High"}]`},
		{"blank description", `[{"title": "x", "description": "", "priority": "High"}]`},
		{"numeric priority", `[{"title": "x", "description": "y", "priority": 1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.text)
			require.Error(t, err)
			var invalid *llm.ErrInvalidResponse
			assert.True(t, errors.As(err, &invalid), "got %T", err)
		})
	}
}

func TestParseReplyNormalizesAndTruncates(t *testing.T) {
	var items []string
	for i, p := range []string{"high", "LOW", "medium", "urgent", "High", "Low", "Medium"} {
		items = append(items, fmt.Sprintf(`{"title":"T%d","description":"d","priority":%q}`, i, p))
	}
	recs, err := ParseReply("[" + strings.Join(items, ",") + "]")
	require.NoError(t, err)
	require.Len(t, recs, MaxRecommendations)

	got := make([]Priority, len(recs))
	for i, r := range recs {
		got[i] = r.Priority
	}
	assert.Equal(t, []Priority{PriorityHigh, PriorityLow, PriorityMedium, PriorityMedium, PriorityHigh}, got)
}

func TestGenerateWithoutModelsUsesRules(t *testing.T) {
	a := sampleAnalysis()
	e := New(nil, quietOptions())

	res := e.Generate(context.Background(), a)
	assert.Equal(t, SourceRules, res.Source)
	assert.Empty(t, res.Model)
	assert.NotEmpty(t, res.Note)
	assert.Equal(t, Fallback(a), res.Recommendations)
}

func TestGenerateUsesModelReply(t *testing.T) {
	mock := llm.NewNamedMockProvider("gemini-test", llm.MockResponse{Text: "```json\n" + replyArray + "\n```"})
	e := New([]llm.Provider{mock}, quietOptions())

	res := e.Generate(context.Background(), sampleAnalysis())
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, "gemini-test", res.Model)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "Master Optics", res.Recommendations[0].Title)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, systemPrompt, req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "- Optics: 37.5%")
	assert.Equal(t, llm.DefaultConfig().MaxTokens, req.MaxTokens)
}

func TestGenerateFallsThroughChain(t *testing.T) {
	tests := []struct {
		name  string
		first llm.MockResponse
	}{
		{"model not found", llm.MockResponse{Err: &llm.ErrModelNotFound{Model: "a"}}},
		{"rate limited", llm.MockResponse{Err: &llm.ErrRateLimit{RetryAfter: time.Second}}},
		{"unavailable", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("boom")}}},
		{"malformed reply", llm.MockResponse{Text: "Sorry, here is some advice without JSON."}},
		{"schema mismatch", llm.MockResponse{Text: `[{"title": "only title"}]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := llm.NewNamedMockProvider("a", tt.first)
			b := llm.NewNamedMockProvider("b", llm.MockResponse{Text: replyArray})
			e := New([]llm.Provider{a, b}, quietOptions())

			res := e.Generate(context.Background(), sampleAnalysis())
			assert.Equal(t, SourceAI, res.Source)
			assert.Equal(t, "b", res.Model)
			assert.Equal(t, 1, a.CallCount())
			assert.Equal(t, 1, b.CallCount())
		})
	}
}

func TestGenerateStopsAtFirstSuccess(t *testing.T) {
	a := llm.NewNamedMockProvider("a", llm.MockResponse{Text: replyArray})
	b := llm.NewNamedMockProvider("b", llm.MockResponse{Text: replyArray})
	e := New([]llm.Provider{a, b}, quietOptions())

	res := e.Generate(context.Background(), sampleAnalysis())
	assert.Equal(t, "a", res.Model)
	assert.Equal(t, 0, b.CallCount())
}

func TestGenerateExhaustedChainUsesRules(t *testing.T) {
	a := llm.NewNamedMockProvider("a", llm.MockResponse{Text: "not json"})
	b := llm.NewNamedMockProvider("b", llm.MockResponse{Err: &llm.ErrModelNotFound{Model: "b"}})
	an := sampleAnalysis()
	e := New([]llm.Provider{a, b}, quietOptions())

	res := e.Generate(context.Background(), an)
	assert.Equal(t, SourceRules, res.Source)
	assert.Equal(t, Fallback(an), res.Recommendations)
	assert.NotEmpty(t, res.Note)
}

// stubProvider blocks until released or its context ends, and records
// the purpose label it was called with.
type stubProvider struct {
	model   string
	text    string
	release chan struct{}

	mu      sync.Mutex
	purpose string
}

func (s *stubProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	s.purpose = llm.PurposeFrom(ctx)
	s.mu.Unlock()
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &llm.Response{Text: s.text, Model: s.model}, nil
}

func (s *stubProvider) ModelID() string { return s.model }

func (s *stubProvider) seenPurpose() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purpose
}

func TestGenerateTagsPurpose(t *testing.T) {
	p := &stubProvider{model: "stub", text: replyArray}
	e := New([]llm.Provider{p}, quietOptions())

	res := e.Generate(context.Background(), sampleAnalysis())
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, llm.PurposeRecommendations, p.seenPurpose())
}

func TestGenerateTimesOutPerModel(t *testing.T) {
	slow := &stubProvider{model: "slow", text: replyArray, release: make(chan struct{})}
	fast := llm.NewNamedMockProvider("fast", llm.MockResponse{Text: replyArray})
	opts := quietOptions()
	opts.Timeout = 20 * time.Millisecond
	e := New([]llm.Provider{slow, fast}, opts)

	res := e.Generate(context.Background(), sampleAnalysis())
	assert.Equal(t, "fast", res.Model)
}

func TestGenerateCancelledContextUsesRules(t *testing.T) {
	a := llm.NewNamedMockProvider("a", llm.MockResponse{Text: replyArray})
	e := New([]llm.Provider{a}, quietOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := e.Generate(ctx, sampleAnalysis())
	assert.Equal(t, SourceRules, res.Source)
	assert.Equal(t, 0, a.CallCount())
}

func TestStatus(t *testing.T) {
	s := New(nil, quietOptions()).Status()
	assert.False(t, s.Ready)
	assert.Equal(t, SourceRules, s.Mode)
	assert.Empty(t, s.Models)

	chain := []llm.Provider{llm.NewNamedMockProvider("a"), llm.NewNamedMockProvider("b")}
	s = New(chain, quietOptions()).Status()
	assert.True(t, s.Ready)
	assert.Equal(t, SourceAI, s.Mode)
	assert.Equal(t, []string{"a", "b"}, s.Models)
	assert.Equal(t, "AI recommendations enabled - trying 2 models", s.Message)
}

func TestCheck(t *testing.T) {
	_, err := New(nil, quietOptions()).Check(context.Background())
	require.Error(t, err)

	down := llm.NewNamedMockProvider("down")
	up := &stubProvider{model: "up", text: "OK"}
	model, err := New([]llm.Provider{down, up}, quietOptions()).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "up", model)
	assert.Equal(t, llm.PurposeStatusCheck, up.seenPurpose())
}

func TestPendingDelivers(t *testing.T) {
	p := &stubProvider{model: "stub", text: replyArray, release: make(chan struct{})}
	e := New([]llm.Provider{p}, quietOptions())

	pending := e.Start(context.Background(), sampleAnalysis())
	close(p.release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, ok := pending.Wait(ctx)
	require.True(t, ok)
	assert.Equal(t, SourceAI, res.Source)
}

func TestPendingDiscarded(t *testing.T) {
	p := &stubProvider{model: "stub", text: replyArray, release: make(chan struct{})}
	e := New([]llm.Provider{p}, quietOptions())

	pending := e.Start(context.Background(), sampleAnalysis())
	pending.Discard()
	close(p.release)
	<-pending.Done()

	res, ok := pending.Wait(context.Background())
	assert.False(t, ok)
	assert.Empty(t, res.Recommendations)
}

func TestPendingWaitHonorsContext(t *testing.T) {
	p := &stubProvider{model: "stub", text: replyArray, release: make(chan struct{})}
	defer close(p.release)
	e := New([]llm.Provider{p}, quietOptions())

	pending := e.Start(context.Background(), sampleAnalysis())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := pending.Wait(ctx)
	assert.False(t, ok)
}

func TestBuildPrompt(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		out, err := BuildPrompt(stats.Analyze(nil))
		require.NoError(t, err)
		assert.Contains(t, out, "- Total Tests Taken: 0")
		assert.Contains(t, out, "- None (Student is doing well!)")
		assert.Contains(t, out, "- Continue improving!")
		assert.Contains(t, out, "- Easy: 0.0% accuracy (0/0)")
	})

	t.Run("recent trend only", func(t *testing.T) {
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		var records []exam.ResultRecord
		for i := range 7 {
			records = append(records, exam.ResultRecord{
				Config:      exam.TestConfiguration{Subject: "Physics"},
				CompletedAt: base.AddDate(0, 0, i),
				Score:       float64(50 + i),
				Attempted:   10,
				Correct:     5,
			})
		}
		out, err := BuildPrompt(stats.Analyze(records))
		require.NoError(t, err)
		assert.Contains(t, out, "  Physics:\n    - Tests: 7")
		assert.NotContains(t, out, "(2026-03-02)")
		assert.Contains(t, out, "- Test 6: 55.0% (2026-03-06)")
		assert.Contains(t, out, "- Test 7: 56.0% (2026-03-07)")
	})
}
