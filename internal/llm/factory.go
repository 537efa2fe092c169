package llm

import (
	"context"
	"fmt"
)

// MultiProviderClient implements Client by dispatching to the backend
// named in the request's ProviderConfig. A single instance registered
// with the worker supports every provider without knowing which one a
// run will select.
type MultiProviderClient struct {
	openai    *OpenAIClient
	anthropic *AnthropicClient
	cli       *CLIClient
	mock      *MockClient
}

// NewMultiProviderClient creates a client that can dispatch to every
// supported provider.
func NewMultiProviderClient() *MultiProviderClient {
	return &MultiProviderClient{
		openai:    NewOpenAIClient(),
		anthropic: NewAnthropicClient(),
		cli:       NewCLIClient(),
		mock:      NewMockClient(),
	}
}

// Call dispatches on ProviderConfig.Provider. An empty provider means
// openai.
func (c *MultiProviderClient) Call(ctx context.Context, req Request) (Response, error) {
	switch req.Config.Provider {
	case "openai", "":
		return c.openai.Call(ctx, req)
	case "anthropic":
		return c.anthropic.Call(ctx, req)
	case "cli":
		return c.cli.Call(ctx, req)
	case "mock":
		return c.mock.Call(ctx, req)
	default:
		return Response{}, fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic, cli, mock)", req.Config.Provider)
	}
}

// NewClient creates a single-provider client for cases where the
// provider is known at init time. Prefer NewMultiProviderClient when
// the provider arrives with the request.
func NewClient(provider string) (Client, error) {
	switch provider {
	case "openai", "":
		return NewOpenAIClient(), nil
	case "anthropic":
		return NewAnthropicClient(), nil
	case "cli":
		return NewCLIClient(), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic, cli, mock)", provider)
	}
}
