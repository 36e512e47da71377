package aiprovider

import (
	"fmt"
	"os"
)

// NewProvider creates a single analysis provider by id
func NewProvider(id string) (Provider, error) {
	switch id {
	case "openai":
		return NewOpenAIProvider(os.Getenv("OPENAI_API_KEY")), nil
	case "anthropic":
		return NewAnthropicProvider(os.Getenv("ANTHROPIC_API_KEY")), nil
	case "local":
		return NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", id)
	}
}

// NewProviders creates all configured providers, skipping none: a
// misconfigured provider id is a hard error, not a silent drop.
func NewProviders(ids []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(ids))
	for _, id := range ids {
		p, err := NewProvider(id)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// Detect returns the provider ids usable in the current environment,
// based on which API keys are present. Falls back to the built-in
// local provider when no external provider is configured.
func Detect() []string {
	var ids []string
	if os.Getenv("OPENAI_API_KEY") != "" {
		ids = append(ids, "openai")
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		ids = append(ids, "anthropic")
	}
	if len(ids) == 0 {
		ids = append(ids, "local")
	}
	return ids
}
