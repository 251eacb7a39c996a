package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/ragerror"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"

	ChatMessageRoleUser = "user"
)

type GeminiChatParts struct {
	Text string `json:"text"`
}

type GeminiChatContent struct {
	Parts []*GeminiChatParts `json:"parts"`
	Role  string             `json:"role,omitempty"`
}

type GeminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type GeminiChatRequest struct {
	Contents         []*GeminiChatContent    `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiChatCandidate struct {
	Content *GeminiChatContent `json:"content"`
}

type GeminiChatResponse struct {
	Candidates []*GeminiChatCandidate `json:"candidates"`
}

type GeminiProvider struct {
	ApiKey    string
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.Backend = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string, timeout time.Duration) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		BaseURL:   DefaultBaseURL,
		ModelName: modelName,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (g *GeminiProvider) Name() string { return llm.BackendGemini }

// IsAvailable only checks that a key is configured; there is no probe call.
func (g *GeminiProvider) IsAvailable(_ context.Context) bool {
	return g.ApiKey != ""
}

func (g *GeminiProvider) GenerateResponse(ctx context.Context, question, retrieved string, opts ...llm.Option) (string, error) {
	if g.ApiKey == "" {
		return "", fmt.Errorf("%w: gemini API key not configured", ragerror.ErrGenerationFailed)
	}
	options := llm.ApplyOptions(opts...)

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload := GeminiChatRequest{
		Contents: []*GeminiChatContent{
			{
				Parts: []*GeminiChatParts{{Text: llm.BuildPrompt(retrieved, question)}},
				Role:  ChatMessageRoleUser,
			},
		},
	}
	if options.Temperature > 0 || options.MaxTokens > 0 {
		payload.GenerationConfig = &GeminiGenerationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		}
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ragerror.ErrGenerationFailed, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ragerror.ErrGenerationFailed, err)
	}
	req.Header.Set("x-goog-api-key", g.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: gemini request failed: %v", ragerror.ErrGenerationFailed, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ragerror.ErrGenerationFailed, err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"%w: status error, got status %d. with response body %s",
			ragerror.ErrGenerationFailed,
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes GeminiChatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", fmt.Errorf("%w: %v", ragerror.ErrGenerationFailed, err)
	}

	text := firstText(&geminiRes)
	if text == "" {
		return "", fmt.Errorf("%w: empty response from gemini", ragerror.ErrGenerationFailed)
	}
	return text, nil
}

func firstText(res *GeminiChatResponse) string {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
