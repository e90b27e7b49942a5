package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/chynybekuuludastan/article_generator/internal/service/llm"
)

// GeminiClient implements the Client interface for Google's Gemini API
type GeminiClient struct {
	apiKey    string
	modelName string
	client    *genai.Client
	logger    llm.Logger
}

// NewGeminiClient creates a new Gemini provider using the official client
func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger llm.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredential
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
		logger:    logger,
	}, nil
}

// Name returns the provider name
func (p *GeminiClient) Name() string {
	return "gemini"
}

// Complete implements the Client interface
func (p *GeminiClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(int32(maxTokens))

	// Article prompts trip the default filters often enough to matter.
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}

	p.logger.Debug("Sending prompt to Gemini", "model", p.modelName, "max_tokens", maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		p.logger.Error("Gemini API error", "error", err)
		return "", p.classify(err)
	}

	if len(resp.Candidates) == 0 {
		return "", &llm.ProviderError{Provider: p.Name(), Retryable: true, Err: llm.ErrEmptyCompletion}
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", &llm.ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("%w: %s", llm.ErrContentBlocked, resp.PromptFeedback.BlockReason),
		}
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText += string(textPart)
		}
	}
	if responseText == "" {
		return "", &llm.ProviderError{Provider: p.Name(), Retryable: true, Err: llm.ErrEmptyCompletion}
	}

	p.logger.Debug("Received response from Gemini", "length", len(responseText))
	return responseText, nil
}

func (p *GeminiClient) classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(p.Name(), apiErr.Code, err)
	}
	return llm.NewProviderError(p.Name(), 0, err)
}

// Close closes the Gemini client
func (p *GeminiClient) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
