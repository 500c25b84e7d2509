package providers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	apiKey    string
}

// NewAnthropicProvider builds a provider for the given key. An empty
// key yields an unconfigured provider that fails fast on Complete.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = defaultAnthropicModel
	}
	p := &AnthropicProvider{
		model:     model,
		maxTokens: 2048,
		apiKey:    apiKey,
	}
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		p.client = &client
	}
	return p
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Configured() bool { return p.apiKey != "" }

func (p *AnthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.client == nil {
		return "", ErrNotConfigured
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}

	var content string
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += b.Text
		}
	}
	return content, nil
}

var _ Provider = (*AnthropicProvider)(nil)
