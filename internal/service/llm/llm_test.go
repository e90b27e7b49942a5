package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProviderErrorClassification(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"transport failure", 0, true},
		{"server error", 503, true},
		{"rate limited", 429, false},
		{"bad credentials", 401, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewProviderError("gemini", tc.status, errors.New("boom"))
			assert.Equal(t, tc.retryable, err.Retryable)
		})
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewProviderError("openai", 500, cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "openai")
	assert.Contains(t, err.Error(), "transient")

	final := NewProviderError("openai", 403, cause)
	assert.Contains(t, final.Error(), "permanent")
}
