package providers

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	defaultGroqModel = "llama-3.3-70b-versatile"
)

// NewGroqProvider builds a provider for Groq's OpenAI-compatible API.
func NewGroqProvider(apiKey, model string) Provider {
	if model == "" {
		model = defaultGroqModel
	}
	return newOpenAICompat("groq", apiKey, groqBaseURL, model)
}
