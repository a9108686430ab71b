package synopsis

import (
	"context"
	"strings"
	"testing"

	"github.com/mreyes/reel-server/internal/models"
)

type fakeProvider struct {
	calls int
	text  string
	err   error
}

func (f *fakeProvider) Name() string      { return "fake" }
func (f *fakeProvider) ModelName() string { return "fake-model" }

func (f *fakeProvider) Generate(ctx context.Context, s models.Storyline) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func testStoryline() models.Storyline {
	return models.Storyline{
		ID:          "origin-story",
		Title:       "Origin Story",
		Description: "From the first borrowed mixer to the family table.",
		Style:       "50cent",
		Tone:        "gritty, unfiltered, victory lap",
		Beats: []models.Beat{
			{
				ID:       "origin-story-0",
				Anecdote: models.Anecdote{ID: "first-set", Year: 2001, Title: "First Set at the Basement"},
				Summary:  "Two crates of records and a borrowed mixer.",
			},
			{
				ID:       "origin-story-1",
				Anecdote: models.Anecdote{ID: "radio-debut", Year: 2009, Title: "Radio Debut"},
				Summary:  "The morning broadcast played my record on air.",
			},
		},
		Timeframe: models.Timeframe{Start: "2001-06-15", End: "2009-04-20", Years: []int{2001, 2009}},
	}
}

// ============== Prompt Tests ==============

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testStoryline())

	for _, want := range []string{
		"Episode: Origin Story",
		"Match the tone: gritty, unfiltered, victory lap.",
		"2001-06-15 to 2009-04-20",
		"- [2001] First Set at the Basement: Two crates of records and a borrowed mixer.",
		"- [2009] Radio Debut: The morning broadcast played my record on air.",
		"Write 2-3 sentences",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q\nprompt:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptEmptyTimeframe(t *testing.T) {
	s := testStoryline()
	s.Timeframe = models.Timeframe{}

	prompt := BuildPrompt(s)
	if !strings.Contains(prompt, "unknown to unknown") {
		t.Errorf("expected unknown timeframe placeholder, prompt:\n%s", prompt)
	}
}

// ============== Factory Tests ==============

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("creating disabled provider: %v", err)
	}
	if provider != nil {
		t.Error("expected nil provider when none configured")
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "bard"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewProviderOpenAIRequiresKey(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("expected error when api key missing")
	}
}

func TestNewProviderOllamaDefaults(t *testing.T) {
	provider, err := NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("creating ollama provider: %v", err)
	}
	if provider == nil {
		t.Fatal("expected a provider")
	}
	if provider.Name() != "ollama" {
		t.Errorf("expected provider name ollama, got %s", provider.Name())
	}
	if provider.ModelName() != defaultOllamaModel {
		t.Errorf("expected default model %s, got %s", defaultOllamaModel, provider.ModelName())
	}
}

// ============== Rate Limit Tests ==============

func TestWithRateLimitPassesThrough(t *testing.T) {
	if got := WithRateLimit(nil, 10); got != nil {
		t.Error("expected nil provider to stay nil")
	}

	fake := &fakeProvider{}
	if got := WithRateLimit(fake, 0); got != Provider(fake) {
		t.Error("expected non-positive cap to leave provider unwrapped")
	}
}

func TestWithRateLimitDelegates(t *testing.T) {
	fake := &fakeProvider{text: "A night to remember."}
	limited := WithRateLimit(fake, 600)

	if limited.Name() != "fake" {
		t.Errorf("expected wrapped provider to keep its name, got %s", limited.Name())
	}

	text, err := limited.Generate(context.Background(), testStoryline())
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if text != "A night to remember." {
		t.Errorf("unexpected text: %q", text)
	}
	if fake.calls != 1 {
		t.Errorf("expected 1 delegated call, got %d", fake.calls)
	}
}

func TestWithRateLimitHonorsContext(t *testing.T) {
	fake := &fakeProvider{text: "ok"}
	limited := WithRateLimit(fake, 1)

	// First call consumes the burst token.
	if _, err := limited.Generate(context.Background(), testStoryline()); err != nil {
		t.Fatalf("first generate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := limited.Generate(ctx, testStoryline()); err == nil {
		t.Error("expected error when context cancelled before clearance")
	}
	if fake.calls != 1 {
		t.Errorf("expected rate-limited call to never reach provider, got %d calls", fake.calls)
	}
}
