package synopsis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/mreyes/reel-server/internal/models"
)

const (
	openaiTimeout   = 30 * time.Second
	openaiMaxTokens = 400
	openaiSystem    = "You are a music documentary producer who writes short, punchy episode synopses from verified production notes."
)

// OpenAIProvider generates synopses through the Chat Completions API
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ModelName returns the configured model
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// IsAvailable checks the API key works by listing models
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		log.Printf("OpenAI availability check failed: %v", err)
		return false
	}
	return true
}

// Generate writes a synopsis for one storyline
func (p *OpenAIProvider) Generate(ctx context.Context, s models.Storyline) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, openaiTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: openaiSystem,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(s),
			},
		},
		MaxTokens:   openaiMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
