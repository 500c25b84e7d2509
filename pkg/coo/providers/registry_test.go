package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/digitalcoo/coo/pkg/coo/engine"
)

type fakeProvider struct {
	name       string
	configured bool
	reply      string
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Configured() bool { return f.configured }
func (f *fakeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if !f.configured {
		return "", ErrNotConfigured
	}
	return f.reply, nil
}

func newTestRegistry(anthropicOK, groqOK, geminiOK, zaiOK bool) *Registry {
	return NewRegistry(
		&fakeProvider{name: "anthropic", configured: anthropicOK, reply: "from anthropic"},
		&fakeProvider{name: "groq", configured: groqOK, reply: "from groq"},
		&fakeProvider{name: "gemini", configured: geminiOK, reply: "from gemini"},
		&fakeProvider{name: "zai", configured: zaiOK, reply: "from zai"},
	)
}

func TestRegistryResolve(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		eng      engine.Engine
		want     string
		wantErr  error
	}{
		{"claude engine prefers anthropic", newTestRegistry(true, true, true, true), engine.EngineClaude, "anthropic", nil},
		{"claude engine falls back to groq", newTestRegistry(false, true, true, true), engine.EngineClaude, "groq", nil},
		{"claude engine falls back to gemini", newTestRegistry(false, false, true, true), engine.EngineClaude, "gemini", nil},
		{"groq engine prefers groq", newTestRegistry(true, true, true, true), engine.EngineGroq, "groq", nil},
		{"groq engine falls back to gemini", newTestRegistry(true, false, true, true), engine.EngineGroq, "gemini", nil},
		{"groq engine falls back to anthropic", newTestRegistry(true, false, false, true), engine.EngineGroq, "anthropic", nil},
		{"nothing configured", newTestRegistry(false, false, false, false), engine.EngineClaude, "", ErrNoProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.registry.Resolve(tt.eng)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("Resolve() = %s, want %s", p.Name(), tt.want)
			}
		})
	}
}

func TestRegistryAgentic(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		p, err := newTestRegistry(true, true, true, true).Agentic()
		if err != nil {
			t.Fatalf("Agentic() error = %v", err)
		}
		if p.Name() != "zai" {
			t.Errorf("Agentic() = %s, want zai", p.Name())
		}
	})
	t.Run("unconfigured", func(t *testing.T) {
		if _, err := newTestRegistry(true, true, true, false).Agentic(); !errors.Is(err, ErrNoProvider) {
			t.Errorf("Agentic() error = %v, want ErrNoProvider", err)
		}
	})
}
