package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	geminiEmbeddingModel = "text-embedding-004"
	geminiBaseURL        = "https://generativelanguage.googleapis.com/v1"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiEmbeddingRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

// GeminiProvider passes the task type through, so documents and queries
// get asymmetric embeddings.
type GeminiProvider struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

func NewGeminiProvider(apiKey string) EmbeddingProvider {
	return &GeminiProvider{
		ApiKey:  apiKey,
		BaseURL: geminiBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if p.ApiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrEmbedding)
	}

	in := geminiEmbeddingRequest{
		Model:    "models/" + geminiEmbeddingModel,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: taskType,
	}
	url := fmt.Sprintf("%s/models/%s:embedContent", p.BaseURL, geminiEmbeddingModel)

	var out EmbeddingResponse
	if err := PostJSON(ctx, p.Client, url, http.Header{"X-Goog-Api-Key": {p.ApiKey}}, in, &out); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(out.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding from gemini", ErrEmbedding)
	}
	return &out, nil
}
