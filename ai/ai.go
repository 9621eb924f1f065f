package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NethermindEth/magi/core"
)

// LLM is a text-in, text-out language model.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrNoAPIKey      = errors.New("API key not set")
	ErrOverloaded    = errors.New("503 Overloaded")
	ErrInvalidFormat = errors.New("JSON PARSE ERROR: AI output invalid format")
	ErrEmptyResponse = errors.New("empty model response")
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLMConfig holds configuration for LLM interactions
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// DefaultLLMConfig returns standard LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:    ProviderGemini,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// NewLLM builds the client for the configured provider and reports which
// source its verdicts should be attributed to.
func NewLLM(ctx context.Context, cfg LLMConfig) (LLM, core.Source, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, core.SourceSimulation, ErrNoAPIKey
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, core.SourceSimulation, err
		}
		return client, core.SourceGemini, nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), core.SourceOpenAI, nil
	default:
		return nil, core.SourceSimulation, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
