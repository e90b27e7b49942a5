package providers

import (
	"context"
)

// Client defines the interface that all LLM providers must implement. A
// provider returns the model's raw completion text; parsing and validation
// happen downstream.
type Client interface {
	// Complete sends a prompt and returns the raw response text. maxTokens
	// bounds the completion size.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Name returns the name of the provider
	Name() string

	// Close closes any connections or resources used by the provider
	Close() error
}

const defaultMaxTokens = 4096
