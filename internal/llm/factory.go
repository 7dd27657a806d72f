package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new reasoning provider based on configuration.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (reasoning disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown reasoning provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
