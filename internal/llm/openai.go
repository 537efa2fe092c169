package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultOpenAIModel is used when the request names no model.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIClient calls the OpenAI chat completions API. BaseURL in the
// provider config points it at any OpenAI-compatible endpoint.
type OpenAIClient struct {
	// extraOpts are appended to every request; tests use this to
	// point the client at a local server.
	extraOpts []option.RequestOption
}

// NewOpenAIClient creates an OpenAI-backed client.
func NewOpenAIClient(opts ...option.RequestOption) *OpenAIClient {
	return &OpenAIClient{extraOpts: opts}
}

// Call sends the prompt as a single user message with temperature 0
// and returns the first choice's content.
func (c *OpenAIClient) Call(ctx context.Context, req Request) (Response, error) {
	opts := make([]option.RequestOption, 0, len(c.extraOpts)+2)
	if key := apiKey("OPENAI_API_KEY"); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if req.Config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(req.Config.BaseURL))
	}
	opts = append(opts, c.extraOpts...)

	client := openai.NewClient(opts...)

	model := req.Config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return Response{}, fmt.Errorf("openai returned no choices")
	}

	return Response{Content: completion.Choices[0].Message.Content}, nil
}
