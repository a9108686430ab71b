// Package synopsis generates short promotional prose for assembled
// storylines. Providers are optional; the server runs fine without one and
// the synopsis endpoint reports unavailable.
package synopsis

import (
	"context"

	"github.com/mreyes/reel-server/internal/models"
)

// Provider defines the interface for synopsis backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// ModelName returns the model the provider generates with
	ModelName() string

	// Generate writes a 2-3 sentence synopsis for one storyline
	Generate(ctx context.Context, s models.Storyline) (string, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific; empty picks the provider default)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for OpenAI-compatible endpoints
	BaseURL string

	// OllamaURL is the Ollama server address
	OllamaURL string
}
