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
	openAICompletionsURL = "https://api.openai.com/v1/chat/completions"
	openAITimeout        = 90 * time.Second
)

// OpenAIClient implements the Client interface for OpenAI
type OpenAIClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	logger     llm.Logger
}

// OpenAIMessage represents a message in the OpenAI chat API
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIRequest represents a request to OpenAI's chat completions API
type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

// OpenAIResponse represents the response from OpenAI's chat completions API
type OpenAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int    `json:"created"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewOpenAIClient creates a new OpenAI provider
func NewOpenAIClient(apiKey, model string, logger llm.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredential
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	return &OpenAIClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: openAITimeout},
		logger:     logger,
	}, nil
}

// Name returns the provider name
func (p *OpenAIClient) Name() string {
	return "openai"
}

// Complete implements the Client interface
func (p *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	apiRequest := OpenAIRequest{
		Model: p.model,
		Messages: []OpenAIMessage{
			{
				Role:    "system",
				Content: "You are an expert SEO content writer. Respond with strict JSON only.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}

	apiResponse, err := p.makeRequest(ctx, apiRequest)
	if err != nil {
		return "", err
	}

	if len(apiResponse.Choices) == 0 {
		return "", &llm.ProviderError{Provider: p.Name(), Retryable: true, Err: llm.ErrEmptyCompletion}
	}
	return apiResponse.Choices[0].Message.Content, nil
}

// makeRequest sends a request to the OpenAI API
func (p *OpenAIClient) makeRequest(ctx context.Context, request OpenAIRequest) (*OpenAIResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openAICompletionsURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, llm.NewProviderError(p.Name(), 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.NewProviderError(p.Name(), 0, err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("OpenAI API error",
			"status", resp.Status,
			"body", string(body))
		return nil, llm.NewProviderError(p.Name(), resp.StatusCode,
			fmt.Errorf("%w: %s", llm.ErrAPIRequestFailed, resp.Status))
	}

	var apiResponse OpenAIResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &apiResponse, nil
}

// Close implements the Client interface
func (p *OpenAIClient) Close() error {
	// Nothing to close for HTTP client
	return nil
}
