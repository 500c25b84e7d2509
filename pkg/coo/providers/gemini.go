package providers

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider talks to the Gemini API. The SDK client needs a
// context to construct, so it is created lazily on first use.
type GeminiProvider struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiProvider builds a provider for the given key.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Configured() bool { return p.apiKey != "" }

func (p *GeminiProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.apiKey == "" {
		return "", ErrNotConfigured
	}

	p.once.Do(func() {
		p.client, p.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if p.initErr != nil {
		return "", fmt.Errorf("gemini client: %w", p.initErr)
	}

	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: system}},
			},
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(user), config)
	if err != nil {
		return "", fmt.Errorf("gemini complete: %w", err)
	}
	return resp.Text(), nil
}

var _ Provider = (*GeminiProvider)(nil)
