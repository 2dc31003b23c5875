package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/examprep/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	name      string
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging under the given
// provider name.
func WithLogging(p Provider, name string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, name: name, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// The caller's context may already be done when the call timed out.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if logErr := l.eventRepo.AppendLLMRequest(logCtx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "[params] max_tokens=%d temperature=%.2f top_p=%.2f top_k=%d\n",
		req.MaxTokens, req.Temperature, req.TopP, req.TopK)

	return b.String()
}
