package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAICompatProvider covers every vendor that speaks the OpenAI chat
// completions protocol behind its own base URL.
type openAICompatProvider struct {
	client *openai.Client
	name   string
	model  string
	apiKey string
}

func newOpenAICompat(name, apiKey, baseURL, model string) *openAICompatProvider {
	p := &openAICompatProvider{
		name:   name,
		model:  model,
		apiKey: apiKey,
	}
	if apiKey != "" {
		client := openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		)
		p.client = &client
	}
	return p
}

func (p *openAICompatProvider) Name() string { return p.name }

func (p *openAICompatProvider) Configured() bool { return p.apiKey != "" }

func (p *openAICompatProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.client == nil {
		return "", ErrNotConfigured
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%s complete: %w", p.name, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s complete: empty response", p.name)
	}
	return completion.Choices[0].Message.Content, nil
}

var _ Provider = (*openAICompatProvider)(nil)
