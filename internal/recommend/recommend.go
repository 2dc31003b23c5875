// Package recommend turns a performance analysis into study
// recommendations, asking a chain of language models first and falling
// back to fixed rules.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/stats"
)

// MaxRecommendations caps every result, whichever tier produced it.
const MaxRecommendations = 5

// Priority ranks a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Recommendation is one suggested study action.
type Recommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Action      string   `json:"actionable,omitempty"`
	Impact      string   `json:"estimatedImpact,omitempty"`
}

// Source names the tier a result came from.
type Source string

const (
	SourceAI    Source = "ai"
	SourceRules Source = "rules"
)

// Result is the outcome of one Generate call. Recommendations come from a
// single tier, never a mix.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Source          Source           `json:"source"`
	Model           string           `json:"model,omitempty"`
	Note            string           `json:"note,omitempty"`
}

// Options tunes remote generation.
type Options struct {
	// Timeout bounds each model attempt. Default: 30s.
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int

	// Logger receives one line per failed attempt. Default: stderr.
	Logger *log.Logger
}

// OptionsFromLLM copies the sampling settings from an LLM config.
func OptionsFromLLM(cfg llm.Config) Options {
	return Options{
		Timeout:     cfg.Timeout,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		TopK:        cfg.TopK,
	}
}

func (o *Options) applyDefaults() {
	d := llm.DefaultConfig()
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "", 0)
	}
}

// Engine generates recommendations. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	chain []llm.Provider
	opts  Options
}

// New creates an Engine over a prioritized model chain. An empty chain
// means rules only.
func New(chain []llm.Provider, opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{chain: chain, opts: opts}
}

// Silent returns Options that discard log output.
func Silent(opts Options) Options {
	opts.Logger = log.New(io.Discard, "", 0)
	return opts
}

// Generate returns recommendations for a. It never fails: when no model
// is configured, every attempt fails, or no reply passes validation, the
// rule-based tier answers. Models are tried one at a time in order.
func (e *Engine) Generate(ctx context.Context, a stats.Analysis) Result {
	if len(e.chain) == 0 {
		return Result{
			Recommendations: Fallback(a),
			Source:          SourceRules,
			Note:            "AI recommendations are not configured; showing rule-based suggestions",
		}
	}

	req, err := e.request(a)
	if err != nil {
		e.opts.Logger.Printf("warning: building recommendation prompt: %v", err)
		return e.fallback(a)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeRecommendations)
	var lastErr error
	for _, p := range e.chain {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		recs, err := e.attempt(ctx, p, req)
		if err == nil {
			return Result{Recommendations: recs, Source: SourceAI, Model: p.ModelID()}
		}
		lastErr = err
		e.logAttempt(p.ModelID(), err)
	}

	e.opts.Logger.Printf("warning: all %d models failed, last error: %v", len(e.chain), lastErr)
	return e.fallback(a)
}

func (e *Engine) fallback(a stats.Analysis) Result {
	return Result{
		Recommendations: Fallback(a),
		Source:          SourceRules,
		Note:            "AI service unavailable; showing rule-based suggestions",
	}
}

func (e *Engine) attempt(ctx context.Context, p llm.Provider, req llm.Request) ([]Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseReply(resp.Text)
}

func (e *Engine) logAttempt(model string, err error) {
	var notFound *llm.ErrModelNotFound
	var rateLimit *llm.ErrRateLimit
	switch {
	case errors.As(err, &notFound):
		e.opts.Logger.Printf("warning: model %s not available, trying next", model)
	case errors.As(err, &rateLimit):
		e.opts.Logger.Printf("warning: model %s rate limited, trying next", model)
	case errors.Is(err, context.DeadlineExceeded):
		e.opts.Logger.Printf("warning: model %s timed out after %s, trying next", model, e.opts.Timeout)
	default:
		e.opts.Logger.Printf("warning: model %s failed: %v", model, err)
	}
}

// Status describes which tier Generate will use.
type Status struct {
	Ready   bool     `json:"ready"`
	Mode    Source   `json:"mode"`
	Models  []string `json:"models"`
	Message string   `json:"message"`
}

// Status reports the engine's configuration without calling any model.
func (e *Engine) Status() Status {
	if len(e.chain) == 0 {
		return Status{
			Mode:    SourceRules,
			Message: "no model credentials found - using rule-based recommendations",
		}
	}
	models := make([]string, len(e.chain))
	for i, p := range e.chain {
		models[i] = p.ModelID()
	}
	return Status{
		Ready:   true,
		Mode:    SourceAI,
		Models:  models,
		Message: fmt.Sprintf("AI recommendations enabled - trying %d models", len(models)),
	}
}

// Check sends a minimal request to each model in order and returns the
// first one that answers. It is used by status checks and reports the
// last error when none do.
func (e *Engine) Check(ctx context.Context) (string, error) {
	if len(e.chain) == 0 {
		return "", errors.New("no models configured")
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeStatusCheck)
	req := llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "Reply with OK."}},
		MaxTokens: 8,
	}
	var lastErr error
	for _, p := range e.chain {
		pctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		_, err := p.Generate(pctx, req)
		cancel()
		if err == nil {
			return p.ModelID(), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("check %d models: %w", len(e.chain), lastErr)
}
