package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAICompleter backs the TextCompleter capability with the OpenAI chat
// completions API.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter validates the credential once at construction. A missing
// API key is a configuration error, not a per-call failure. The request
// timeout bounds every call so a hung service surfaces as an ordinary
// generation failure.
func NewOpenAICompleter(apiKey, model string, timeout time.Duration) (*OpenAICompleter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI.API_KEY is not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(apiKey))}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &OpenAICompleter{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *OpenAICompleter) Model() string { return c.model }

// Complete sends a single-user-message chat completion and returns the reply
// text.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
