package providers

const (
	zaiBaseURL      = "https://api.z.ai/api/paas/v4"
	defaultZaiModel = "glm-4.6"
)

// NewZaiProvider builds a provider for the Z.ai OpenAI-compatible API.
// It backs the agentic tool used during peak hours.
func NewZaiProvider(apiKey, model string) Provider {
	if model == "" {
		model = defaultZaiModel
	}
	return newOpenAICompat("zai", apiKey, zaiBaseURL, model)
}
