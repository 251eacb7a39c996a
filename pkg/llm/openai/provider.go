// Package openai talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself, the HuggingFace router, vLLM, LocalAI).
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/ragerror"

	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

type OpenAIProvider struct {
	apiKey    string
	modelName string
	client    *goopenai.Client
}

var _ llm.Backend = &OpenAIProvider{}

// NewOpenAIProvider builds a client for baseURL, or the public OpenAI API
// when baseURL is empty.
func NewOpenAIProvider(apiKey, baseURL, modelName string, timeout time.Duration) *OpenAIProvider {
	if modelName == "" {
		modelName = DefaultModel
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIProvider{
		apiKey:    apiKey,
		modelName: modelName,
		client:    goopenai.NewClientWithConfig(cfg),
	}
}

func (p *OpenAIProvider) Name() string { return llm.BackendOpenAI }

func (p *OpenAIProvider) IsAvailable(_ context.Context) bool {
	return p.apiKey != ""
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, question, retrieved string, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(opts...)

	model := p.modelName
	if options.Model != "" {
		model = options.Model
	}

	req := goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: llm.BuildPrompt(retrieved, question)},
		},
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai request failed: %v", ragerror.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ragerror.ErrGenerationFailed)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty response from openai", ragerror.ErrGenerationFailed)
	}
	return answer, nil
}
