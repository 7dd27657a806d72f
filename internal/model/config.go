package model

import "time"

// Config is the complete Fallax configuration.
// Hierarchy: CLI flags > environment (FALLAX_*) > config file > defaults.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Validation ValidationConfig `yaml:"validation"`
	Cache      CacheConfig      `yaml:"cache"`
	Server     ServerConfig     `yaml:"server"`
	Output     OutputConfig     `yaml:"output"`
}

// LLMConfig configures the reasoning provider.
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "" (disabled)
	Provider string `yaml:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model"`

	// APIKey for OpenAI/Anthropic (prefer env vars)
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout per reasoning call, in seconds
	Timeout int `yaml:"timeout"`

	// MaxTokens limits response length
	MaxTokens int `yaml:"max_tokens"`

	// MaxRetries on transport failure (parse failures are never retried)
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the fixed pause between retries
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// RequestsPerSecond bounds the call rate toward the provider (0 = unlimited)
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`

	// Proxy settings
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
}

// PipelineConfig configures the orchestrator.
type PipelineConfig struct {
	// Budget is the wall-clock allowance spanning detection through rewrite
	Budget time.Duration `yaml:"budget"`

	// ExplainConcurrency caps simultaneous explanation calls
	ExplainConcurrency int `yaml:"explain_concurrency"`

	// MinConfidence is the default filter threshold when the caller sends none
	MinConfidence int `yaml:"min_confidence"`

	// IncludeRewrite is the default rewrite policy when the caller sends none
	IncludeRewrite bool `yaml:"include_rewrite"`
}

// ValidationConfig configures the input gate.
type ValidationConfig struct {
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`

	// ASCIIThreshold is the minimum fraction of single-byte ASCII characters
	// for the input to count as English-eligible. A heuristic, not a real
	// language detector.
	ASCIIThreshold float64 `yaml:"ascii_threshold"`

	// LanguageGate toggles the ASCII-ratio rejection entirely
	LanguageGate bool `yaml:"language_gate"`
}

// CacheConfig configures the optional in-memory result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// OutputConfig configures rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "", // disabled by default
			Model:             "",
			Timeout:           8,
			MaxTokens:         1500,
			MaxRetries:        2,
			RetryBackoff:      500 * time.Millisecond,
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		Pipeline: PipelineConfig{
			Budget:             10 * time.Second,
			ExplainConcurrency: 5,
			MinConfidence:      0,
			IncludeRewrite:     true,
		},
		Validation: ValidationConfig{
			MinLength:      10,
			MaxLength:      5000,
			ASCIIThreshold: 0.7,
			LanguageGate:   true,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     15 * time.Minute,
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
