package embedding

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider embeds with a local Ollama model (nomic-embed-text by
// default).
type OllamaProvider struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Name() string { return "ollama" }

// Generate ignores taskType.
func (p *OllamaProvider) Generate(ctx context.Context, text string, _ string) (*EmbeddingResponse, error) {
	var out ollamaEmbeddingResponse
	err := PostJSON(ctx, p.Client, p.BaseURL+"/api/embeddings", nil,
		ollamaEmbeddingRequest{Model: p.Model, Prompt: text}, &out)
	if err != nil {
		return nil, fmt.Errorf("ollama %s: %w", p.Model, err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding from ollama model %s", ErrEmbedding, p.Model)
	}

	values := make([]float32, len(out.Embedding))
	for i, v := range out.Embedding {
		values[i] = float32(v)
	}
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: Normalize(values)}}, nil
}

// Normalize scales a vector to unit length. Zero vectors are returned as is.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
