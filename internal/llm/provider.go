// Package llm talks to the model backend through a small provider
// abstraction. Every call returns decoded JSON; prompt construction and
// role semantics live in roles.go.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"veracity/internal/model"
)

// Provider defines the interface for LLM backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Call sends one prompt pair and returns the decoded JSON object
	Call(ctx context.Context, req CallRequest) (map[string]any, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// CallRequest contains the input for one model call
type CallRequest struct {
	// System is the role instruction
	System string

	// User is the question payload
	User string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.TimeoutSeconds,
		MaxTokens: mc.MaxTokens,
	}
}

// decodeJSONObject parses the first JSON object embedded in model output.
// Models wrap JSON in prose or markdown fences often enough that a strict
// json.Unmarshal of the whole body is not workable.
func decodeJSONObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty model output")
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in model output: %q", truncateForError(text))
	}

	dec := json.NewDecoder(strings.NewReader(text[start:]))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	return obj, nil
}

func truncateForError(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
