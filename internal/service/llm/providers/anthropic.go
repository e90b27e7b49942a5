package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chynybekuuludastan/article_generator/internal/service/llm"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	anthropicTimeout     = 120 * time.Second
)

// AnthropicClient implements the Client interface for the Anthropic API
type AnthropicClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	logger     llm.Logger
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewAnthropicClient creates a new Anthropic provider
func NewAnthropicClient(apiKey, model string, logger llm.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredential
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	return &AnthropicClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: anthropicTimeout},
		logger:     logger,
	}, nil
}

// Name returns the provider name
func (p *AnthropicClient) Name() string {
	return "anthropic"
}

// Complete implements the Client interface
func (p *AnthropicClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	apiRequest := anthropicRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    "You are an expert SEO content writer. Respond with strict JSON only.",
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	requestBody, err := json.Marshal(apiRequest)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", anthropicMessagesURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", llm.NewProviderError(p.Name(), 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.NewProviderError(p.Name(), 0, err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("Anthropic API error",
			"status", resp.Status,
			"body", string(body))
		return "", llm.NewProviderError(p.Name(), resp.StatusCode,
			fmt.Errorf("%w: %s", llm.ErrAPIRequestFailed, resp.Status))
	}

	var apiResponse anthropicResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	var text string
	for _, block := range apiResponse.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", &llm.ProviderError{Provider: p.Name(), Retryable: true, Err: llm.ErrEmptyCompletion}
	}
	return text, nil
}

// Close implements the Client interface
func (p *AnthropicClient) Close() error {
	return nil
}
