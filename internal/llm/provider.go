package llm

import (
	"context"
)

// Usage reports token counts for one model call, for cost estimation.
type Usage struct {
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for LLM providers. Completions are plain
// prompt-in/text-out; callers own prompt construction and output parsing.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, *Usage, error)
	GetProviderName() string
}

// ProviderError represents an error from an LLM provider.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
