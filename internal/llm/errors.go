package llm

import (
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrModelNotFound indicates the requested model does not exist or is not
// served to this key (404).
type ErrModelNotFound struct {
	Model string
	Err   error
}

func (e *ErrModelNotFound) Error() string {
	return fmt.Sprintf("model %q unavailable: %v", e.Model, e.Err)
}

func (e *ErrModelNotFound) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// have the expected structure.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// mapStatus turns an HTTP status from any SDK into a typed error.
func mapStatus(status int, model string, err error) error {
	switch {
	case status == 404:
		return &ErrModelNotFound{Model: model, Err: err}
	case status == 429:
		return &ErrRateLimit{Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
