package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModels is the model priority order for recommendations.
// Older identifiers stay in the list because keys provisioned long ago
// may only be served those.
var DefaultGeminiModels = []string{
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-2.5-flash-lite",
	"gemini-pro",
	"gemini-1.0-pro",
}

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-lite":  "gemini-2.5-flash-lite",
}

// GeminiProvider implements Provider for one Gemini model.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProviders creates one provider per configured model, sharing a
// single client.
func NewGeminiProviders(ctx context.Context, cfg GeminiConfig) ([]*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	models := cfg.Models
	if len(models) == 0 {
		models = DefaultGeminiModels
	}
	out := make([]*GeminiProvider, 0, len(models))
	for _, m := range models {
		out = append(out, &GeminiProvider{client: client, model: resolveModel(m, geminiModels)})
	}
	return out, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.TopP > 0 {
		topP := float32(req.TopP)
		config.TopP = &topP
	}
	if req.TopK > 0 {
		topK := float32(req.TopK)
		config.TopK = &topK
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, buildGeminiContents(req.Messages), config)
	if err != nil {
		return nil, mapGeminiError(p.model, err)
	}

	text := result.Text()
	if text == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty Gemini response")}
	}

	resp := &Response{
		Text:       text,
		Model:      p.model,
		StopReason: mapGeminiStopReason(result),
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 {
		switch result.Candidates[0].FinishReason {
		case "STOP":
			return "end"
		case "MAX_TOKENS":
			return "max_tokens"
		}
	}
	return "end"
}

// mapGeminiError classifies a genai failure. The SDK returns APIError by
// value; the pointer form is matched too.
func mapGeminiError(model string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return mapGeminiAPIError(model, apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return mapGeminiAPIError(model, *apiErrPtr, err)
	}
	return &ErrProviderUnavailable{Err: err}
}

func mapGeminiAPIError(model string, apiErr genai.APIError, err error) error {
	mapped := mapStatus(apiErr.Code, model, err)
	if rl, ok := mapped.(*ErrRateLimit); ok {
		rl.RetryAfter = geminiRetryDelay(apiErr.Details)
	}
	return mapped
}

// geminiRetryDelay reads the google.rpc.RetryInfo detail, if present.
func geminiRetryDelay(details []map[string]any) time.Duration {
	for _, d := range details {
		if t, _ := d["@type"].(string); !strings.HasSuffix(t, "google.rpc.RetryInfo") {
			continue
		}
		raw, _ := d["retryDelay"].(string)
		if delay, err := time.ParseDuration(raw); err == nil {
			return delay
		}
	}
	return 0
}
