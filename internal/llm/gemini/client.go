package gemini

import (
	"context"

	"google.golang.org/genai"

	"peerprep/interview/internal/llm"
)

// Client represents a Gemini LLM client

type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// Complete sends one prompt and returns the model's text plus token usage.
func (c *Client) Complete(ctx context.Context, prompt string) (string, *llm.Usage, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return "", nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if result == nil {
		return "", nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return "", nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return "", nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	usage := &llm.Usage{Model: c.config.Model}
	if result.UsageMetadata != nil {
		if result.UsageMetadata.PromptTokenCount != nil {
			usage.InputTokens = int(*result.UsageMetadata.PromptTokenCount)
		}
		if result.UsageMetadata.CandidatesTokenCount != nil {
			usage.OutputTokens = int(*result.UsageMetadata.CandidatesTokenCount)
		}
	}

	return text, usage, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}
