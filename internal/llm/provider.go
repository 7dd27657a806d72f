package llm

import (
	"context"
	"time"

	"github.com/rvelikov/fallax/internal/model"
)

// Provider is the raw completion capability implemented by each backend.
// The pipeline never depends on a concrete model: any implementation
// (hosted API, local model, deterministic test double) is acceptable.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a single prompt and returns the raw completion text
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one completion call.
type CompletionRequest struct {
	// System is the system/instruction preamble
	System string

	// Prompt is the user-facing prompt text
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; analysis calls want it low
	Temperature float64
}

// Config holds reasoning provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout per call in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// MaxRetries on transport failure; parse failures are never retried
	MaxRetries int

	// RetryBackoff is the fixed pause between retries
	RetryBackoff time.Duration

	// RequestsPerSecond bounds the call rate (0 = unlimited)
	RequestsPerSecond float64
	BurstSize         int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:     "", // Disabled by default
		Model:        "",
		Timeout:      8,
		MaxTokens:    1500,
		MaxRetries:   2,
		RetryBackoff: 500 * time.Millisecond,
		BurstSize:    5,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:          mc.Provider,
		Model:             mc.Model,
		APIKey:            mc.APIKey,
		BaseURL:           mc.BaseURL,
		Timeout:           mc.Timeout,
		MaxTokens:         mc.MaxTokens,
		MaxRetries:        mc.MaxRetries,
		RetryBackoff:      mc.RetryBackoff,
		RequestsPerSecond: mc.RequestsPerSecond,
		BurstSize:         mc.BurstSize,
		HTTPProxy:         mc.HTTPProxy,
		HTTPSProxy:        mc.HTTPSProxy,
	}
}
