package answer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig selects the chat-completion endpoint and decoding parameters.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	// StopMarker ends generation at the model's end-of-turn, if set.
	StopMarker string
}

// OpenAIBackend implements Backend over an OpenAI-compatible chat API.
// Temperature is pinned to zero for minimal-variance output.
type OpenAIBackend struct {
	api *openai.Client
	cfg OpenAIConfig
}

// NewOpenAIBackend builds the backend.
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion api key must be set")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("completion model must be set")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIBackend{
		api: openai.NewClientWithConfig(clientCfg),
		cfg: cfg,
	}, nil
}

// Complete performs one chat-completion call.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       b.cfg.Model,
		Temperature: 0,
		MaxTokens:   b.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if b.cfg.StopMarker != "" {
		req.Stop = []string{b.cfg.StopMarker}
	}
	resp, err := b.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsTransient reports whether the error is a rate limit or server overload.
// Auth and malformed-request errors are not transient and must surface
// immediately.
func (b *OpenAIBackend) IsTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}
