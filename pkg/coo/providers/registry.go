package providers

import (
	"github.com/digitalcoo/coo/pkg/coo/engine"
)

// Registry maps an engine decision to the first configured provider in
// that engine's fallback chain.
type Registry struct {
	providers map[string]Provider
	chains    map[engine.Engine][]string
	agentic   Provider
}

// NewRegistry wires the standard chains. The primary pick for each
// engine comes first; the rest cover the case where its key is absent.
func NewRegistry(anthropicP, groqP, geminiP, zaiP Provider) *Registry {
	return &Registry{
		providers: map[string]Provider{
			anthropicP.Name(): anthropicP,
			groqP.Name():      groqP,
			geminiP.Name():    geminiP,
		},
		chains: map[engine.Engine][]string{
			engine.EngineClaude: {"anthropic", "groq", "gemini"},
			engine.EngineGroq:   {"groq", "gemini", "anthropic"},
		},
		agentic: zaiP,
	}
}

// Resolve returns the first configured provider for the engine, or
// ErrNoProvider when the whole chain is unconfigured.
func (r *Registry) Resolve(eng engine.Engine) (Provider, error) {
	for _, name := range r.chains[eng] {
		p, ok := r.providers[name]
		if ok && p.Configured() {
			return p, nil
		}
	}
	return nil, ErrNoProvider
}

// Agentic returns the provider behind the peak-hours agentic tool, or
// ErrNoProvider when it is unconfigured.
func (r *Registry) Agentic() (Provider, error) {
	if r.agentic != nil && r.agentic.Configured() {
		return r.agentic, nil
	}
	return nil, ErrNoProvider
}
