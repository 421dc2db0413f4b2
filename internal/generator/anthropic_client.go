package generator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicClient is the alternate provider, using the JSON output format for
// schema-constrained requests.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient builds a client for apiKey. An empty model selects
// defaultAnthropicModel; opts are appended after the key.
func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicClient{client: &client, model: model}, nil
}

func (c *AnthropicClient) ModelName() string { return c.model }

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (*LLMResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{
				Schema: anthropicSchema(req.Schema.Definition),
			},
		}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: "anthropic", Status: apiErr.StatusCode, Err: err}
		}
		return nil, fmt.Errorf("anthropic API: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	return &LLMResponse{
		Content:      text,
		Model:        string(message.Model),
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// anthropicUnsupported lists schema keywords the structured output endpoint
// rejects. The local jsonschema check still enforces them.
var anthropicUnsupported = []string{"minLength", "maxLength"}

// anthropicSchema returns a copy of def without anthropicUnsupported keys, at
// any depth. def itself is not modified.
func anthropicSchema(def map[string]any) map[string]any {
	out := make(map[string]any, len(def))
	for k, v := range def {
		if slices.Contains(anthropicUnsupported, k) {
			continue
		}
		out[k] = anthropicSchemaValue(v)
	}
	return out
}

func anthropicSchemaValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return anthropicSchema(t)
	case []any:
		list := make([]any, len(t))
		for i, item := range t {
			list[i] = anthropicSchemaValue(item)
		}
		return list
	}
	return v
}
