package synopsis

import (
	"fmt"
	"strings"
)

// NewProvider creates a synopsis provider based on configuration
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	case "":
		// No provider configured - synopsis generation disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown synopsis provider: %s (supported: openai, ollama)", cfg.Provider)
	}
}
