package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/adikusuma/duitbot/internal/common"
)

// Config holds configuration for the oracle.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// Default API endpoints per provider. Groq exposes the OpenAI wire
// format, so it reuses the OpenAI client with a different base URL.
const (
	openAIBaseURL    = "https://api.openai.com/v1"
	groqBaseURL      = "https://api.groq.com/openai/v1"
	anthropicBaseURL = "https://api.anthropic.com"
)

// newClient creates the provider client for the configuration.
func newClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.BaseURL == "" {
			cfg.BaseURL = openAIBaseURL
		}
		return newOpenAIClient(cfg)
	case "groq":
		if cfg.BaseURL == "" {
			cfg.BaseURL = groqBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = "llama3-8b-8192"
		}
		return newOpenAIClient(cfg)
	case "anthropic":
		if cfg.BaseURL == "" {
			cfg.BaseURL = anthropicBaseURL
		}
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}
