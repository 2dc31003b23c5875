package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/examprep/internal/store"
)

// NewChain builds the prioritized model list from configuration: every
// configured Gemini model, then OpenAI, Anthropic and OpenRouter. Each
// provider is wrapped with event logging when repo is non-nil. An empty
// chain means no credentials are configured.
func NewChain(ctx context.Context, cfg Config, repo store.EventRepo) ([]Provider, error) {
	if cfg.Mock {
		return []Provider{wrap(NewMockProvider(), "mock", repo)}, nil
	}

	var chain []Provider

	if cfg.Gemini.APIKey != "" {
		gs, err := NewGeminiProviders(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini provider: %w", err)
		}
		for _, g := range gs {
			chain = append(chain, wrap(g, "gemini", repo))
		}
	}
	if cfg.OpenAI.APIKey != "" {
		p, err := NewOpenAIProvider(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("initializing openai provider: %w", err)
		}
		chain = append(chain, wrap(p, "openai", repo))
	}
	if cfg.Anthropic.APIKey != "" {
		p, err := NewAnthropicProvider(cfg.Anthropic)
		if err != nil {
			return nil, fmt.Errorf("initializing anthropic provider: %w", err)
		}
		chain = append(chain, wrap(p, "anthropic", repo))
	}
	if cfg.OpenRouter.APIKey != "" {
		p, err := NewOpenRouterProvider(cfg.OpenRouter)
		if err != nil {
			return nil, fmt.Errorf("initializing openrouter provider: %w", err)
		}
		chain = append(chain, wrap(p, "openrouter", repo))
	}

	return chain, nil
}

func wrap(p Provider, name string, repo store.EventRepo) Provider {
	if repo == nil {
		return p
	}
	return WithLogging(p, name, repo)
}
