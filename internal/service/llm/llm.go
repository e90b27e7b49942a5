package llm

import (
	"errors"
	"fmt"
	"log"
)

// Logger interface for service logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Common errors
var (
	ErrAPIRequestFailed  = errors.New("LLM API request failed")
	ErrEmptyCompletion   = errors.New("LLM returned an empty completion")
	ErrContentBlocked    = errors.New("LLM blocked the prompt")
	ErrMissingCredential = errors.New("provider API key is missing")
)

// DefaultLogger provides a basic implementation of the Logger interface
type DefaultLogger struct{}

func (l *DefaultLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.Printf("[DEBUG] %s %v", msg, keysAndValues)
}

func (l *DefaultLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Printf("[INFO] %s %v", msg, keysAndValues)
}

func (l *DefaultLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Printf("[ERROR] %s %v", msg, keysAndValues)
}

// ProviderError wraps a provider-local failure with a retryable flag.
// Authentication failures and exhausted quotas are final for a provider;
// timeouts and 5xx responses could succeed on a later run. Either way the
// orchestrator advances to the next configured provider instead of calling
// the same one again.
type ProviderError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "transient"
	}
	return fmt.Sprintf("provider %s: %s failure: %v", e.Provider, kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError classifies an HTTP status into a ProviderError. Status 0
// marks a transport-level failure (timeout, connection reset).
func NewProviderError(provider string, status int, err error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Retryable: status >= 500 || status == 0,
		Err:       err,
	}
}
