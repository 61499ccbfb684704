package llm

import (
	"fmt"
	"os"
	"sort"
	"time"
)

// Platform describes an LLM service the app can talk to.
type Platform struct {
	// Name is the settings value, e.g. "deepseek".
	Name        string
	DisplayName string
	// BaseURL is the default endpoint. Empty for native SDK platforms.
	BaseURL      string
	DefaultModel string
	// Compatible platforms speak the OpenAI chat completions API.
	Compatible bool
	// KeyEnv is the conventional API key variable probed by DiscoverConfig.
	KeyEnv string
	// Aliases maps short model names to the IDs the platform expects.
	Aliases map[string]string
}

// Platforms is the catalog of supported platforms by name.
var Platforms = map[string]Platform{
	"openrouter": {
		Name: "openrouter", DisplayName: "OpenRouter",
		BaseURL: "https://openrouter.ai/api/v1", DefaultModel: "anthropic/claude-3-sonnet",
		Compatible: true, KeyEnv: "OPENROUTER_API_KEY",
	},
	"deepseek": {
		Name: "deepseek", DisplayName: "DeepSeek",
		BaseURL: "https://api.deepseek.com/v1", DefaultModel: "deepseek-chat",
		Compatible: true, KeyEnv: "DEEPSEEK_API_KEY",
	},
	"volcengine": {
		Name: "volcengine", DisplayName: "Volcengine Ark",
		BaseURL: "https://ark.cn-beijing.volces.com/api/v3", DefaultModel: "doubao-pro-4k",
		Compatible: true, KeyEnv: "ARK_API_KEY",
	},
	"openai": {
		Name: "openai", DisplayName: "OpenAI",
		DefaultModel: "gpt-4o-mini", Compatible: true, KeyEnv: "OPENAI_API_KEY",
	},
	"anthropic": {
		Name: "anthropic", DisplayName: "Anthropic",
		DefaultModel: "claude-haiku", KeyEnv: "ANTHROPIC_API_KEY",
		Aliases: map[string]string{
			"claude-haiku":  "claude-haiku-4-5-20251001",
			"claude-sonnet": "claude-sonnet-4-5-20250929",
		},
	},
	"gemini": {
		Name: "gemini", DisplayName: "Google Gemini",
		DefaultModel: "gemini-flash", KeyEnv: "GEMINI_API_KEY",
		Aliases: map[string]string{
			"gemini-flash": "gemini-2.5-flash",
			"gemini-pro":   "gemini-2.5-pro",
		},
	},
	"mock": {
		Name: "mock", DisplayName: "Mock",
		DefaultModel: "mock",
	},
}

// PlatformNames returns the platform names in sorted order.
func PlatformNames() []string {
	names := make([]string, 0, len(Platforms))
	for n := range Platforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Config holds the LLM provider configuration.
type Config struct {
	// Platform selects the service. See Platforms.
	Platform string
	APIKey   string
	// BaseURL overrides the platform endpoint for compatible platforms.
	BaseURL string
	// Model overrides the platform default model.
	Model string
	Retry RetryConfig

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Platform: "openrouter",
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// DiscoverConfig probes the conventional API key env vars (DeepSeek →
// OpenRouter → OpenAI → Anthropic → Gemini → Volcengine) and returns a
// Config for the first platform whose key is found. Returns
// (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	for _, name := range []string{"deepseek", "openrouter", "openai", "anthropic", "gemini", "volcengine"} {
		p := Platforms[name]
		if k := os.Getenv(p.KeyEnv); k != "" {
			cfg := DefaultConfig()
			cfg.Platform = name
			cfg.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// ResolvedModel returns the configured model or the platform default,
// with platform aliases expanded.
func (c Config) ResolvedModel() string {
	p := Platforms[c.Platform]
	model := c.Model
	if model == "" {
		model = p.DefaultModel
	}
	if id, ok := p.Aliases[model]; ok {
		return id
	}
	return model
}

// ResolvedBaseURL returns the configured endpoint or the platform default.
func (c Config) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return Platforms[c.Platform].BaseURL
}

// Configured reports whether enough is set to attempt a request.
func (c Config) Configured() bool {
	return c.Platform == "mock" || (c.Platform != "" && c.APIKey != "")
}

// Validate checks that the platform is known and has its API key set.
func (c Config) Validate() error {
	p, ok := Platforms[c.Platform]
	if !ok {
		return fmt.Errorf("unknown LLM platform: %q", c.Platform)
	}
	if p.Name != "mock" && c.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s platform", p.DisplayName)
	}
	return nil
}
