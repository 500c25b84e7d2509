// Package providers holds the LLM vendor clients and the registry that
// resolves an engine choice to a usable provider.
package providers

import (
	"context"
	"errors"
)

// Provider is a chat completion backend. Implementations return the
// assistant's reply text for a single system+user exchange.
type Provider interface {
	// Name returns the provider identifier ("anthropic", "groq", ...).
	Name() string

	// Configured reports whether the provider has credentials and can
	// be called.
	Configured() bool

	// Complete sends one exchange and returns the reply text.
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrNoProvider is returned by the registry when no configured provider
// can serve the requested engine.
var ErrNoProvider = errors.New("no configured provider available")

// ErrNotConfigured is returned by Complete when the provider has no
// API key.
var ErrNotConfigured = errors.New("provider not configured")
