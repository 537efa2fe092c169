package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when the request names no model.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// maxPatchTokens bounds the response; large multi-file diffs fit
// comfortably under this.
const maxPatchTokens = 16_384

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	extraOpts []option.RequestOption
}

// NewAnthropicClient creates an Anthropic-backed client.
func NewAnthropicClient(opts ...option.RequestOption) *AnthropicClient {
	return &AnthropicClient{extraOpts: opts}
}

// Call sends the prompt as a single user message and concatenates the
// text blocks of the reply.
func (c *AnthropicClient) Call(ctx context.Context, req Request) (Response, error) {
	opts := make([]option.RequestOption, 0, len(c.extraOpts)+1)
	if key := apiKey("ANTHROPIC_API_KEY"); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	opts = append(opts, c.extraOpts...)

	client := anthropic.NewClient(opts...)

	model := req.Config.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxPatchTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	return Response{Content: b.String()}, nil
}
