// Package llm handles LLM provider communication. Providers return raw text
// that usually, but not always, parses as JSON; normalization of that text
// is the normalize package's job.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying call sites.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// DefaultModels maps a provider name to its default model.
var DefaultModels = map[string]string{
	"google":    "gemini-1.5-flash",
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-4o-mini",
}

// defaultNewProvider dispatches to the appropriate provider implementation.
// Gemini is the default backend.
func defaultNewProvider(providerName, model string) (Provider, error) {
	name := strings.ToLower(providerName)
	if name == "" {
		name = "google"
	}
	if model == "" {
		model = DefaultModels[name]
	}
	switch name {
	case "google":
		return newGoogleProvider(model)
	case "anthropic":
		return newAnthropicProvider(model)
	case "openai":
		return newOpenAIProvider(model)
	case "fixture":
		return newFixtureProvider(model)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", providerName)
	}
}
