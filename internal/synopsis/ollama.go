package synopsis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mreyes/reel-server/internal/models"
)

const defaultOllamaModel = "llama3.2"

// OllamaProvider generates synopses through a local Ollama server
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	retryBase  time.Duration
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	baseURL := cfg.OllamaURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		retryBase: time.Second,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// ModelName returns the configured model
func (p *OllamaProvider) ModelName() string {
	return p.model
}

// generateRequest is the request body for /api/generate
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the response from /api/generate
type generateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
}

// Generate writes a synopsis for one storyline
// Includes retry logic with exponential backoff (up to 3 attempts)
func (p *OllamaProvider) Generate(ctx context.Context, s models.Storyline) (string, error) {
	req := generateRequest{
		Model:  p.model,
		Prompt: BuildPrompt(s),
		Stream: false,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s
			backoff := time.Duration(1<<uint(attempt-1)) * p.retryBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		response, err := p.doGenerate(ctx, body)
		if err == nil {
			return strings.TrimSpace(response), nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (p *OllamaProvider) doGenerate(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return genResp.Response, nil
}

// IsAvailable checks if Ollama is reachable
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
