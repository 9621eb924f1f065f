package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient generates text with OpenAI chat completions.
type OpenAIClient struct {
	client *openai.Client
	config LLMConfig
}

// NewOpenAIClient creates an OpenAI-backed LLM.
func NewOpenAIClient(cfg LLMConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	return &OpenAIClient{
		client: openai.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Generate sends prompt as a single user message.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   o.config.MaxTokens,
			Temperature: o.config.Temperature,
		},
	)
	if err != nil {
		return "", openAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("%w: %s", ErrOverloaded, apiErr.Message)
		}
		return fmt.Errorf("API ERROR: %d %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %v", ErrOverloaded, reqErr.Err)
	}
	return fmt.Errorf("OpenAI completion failed: %w", err)
}
