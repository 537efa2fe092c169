// Package llm contains the language-model provider backends. Each
// backend takes a fully composed prompt and returns free text that is
// expected, but not guaranteed, to contain a marker-wrapped patch.
package llm

import (
	"context"
	"os"

	"github.com/mfateev/autodev-temporal-go/internal/models"
)

// Request is a single patch-generation call.
type Request struct {
	Prompt string                `json:"prompt"`
	Config models.ProviderConfig `json:"config"`
}

// Response is the raw provider output.
type Response struct {
	Content string `json:"content"`
}

// Client is implemented by every provider backend.
type Client interface {
	Call(ctx context.Context, req Request) (Response, error)
}

// ConfigFromEnv builds a ProviderConfig from the process environment.
// Flags may override individual fields afterwards.
func ConfigFromEnv() models.ProviderConfig {
	return models.ProviderConfig{
		Provider:   os.Getenv("LLM_PROVIDER"),
		Model:      os.Getenv("LLM_MODEL"),
		BaseURL:    os.Getenv("LLM_BASE_URL"),
		CLICommand: os.Getenv("LLM_CLI_COMMAND"),
	}
}

// apiKey returns the provider API key: the provider-specific variable
// first, then the generic LLM_API_KEY.
func apiKey(specific string) string {
	if specific != "" {
		if key := os.Getenv(specific); key != "" {
			return key
		}
	}
	return os.Getenv("LLM_API_KEY")
}
