package jina

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pdf-rag-be/pkg/embedding"
)

const (
	defaultBaseURL = "https://api.jina.ai/v1/embeddings"
	defaultModel   = "jina-embeddings-v3"
)

// JinaProvider calls the hosted Jina embeddings API. v3 models receive a
// retrieval task hint derived from the embedding task type.
type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ embedding.EmbeddingProvider = (*JinaProvider)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
	Task  string   `json:"task,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewJinaProvider uses the public endpoint and jina-embeddings-v3 when
// baseURL or model are empty.
func NewJinaProvider(apiKey, baseURL, model string) *JinaProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *JinaProvider) Name() string { return "jina" }

func (p *JinaProvider) task(taskType string) string {
	if !strings.HasPrefix(p.model, "jina-embeddings-v3") {
		return ""
	}
	switch taskType {
	case embedding.TaskRetrievalQuery:
		return "retrieval.query"
	case embedding.TaskRetrievalDocument:
		return "retrieval.passage"
	}
	return ""
}

func (p *JinaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: JINA_API_KEY is not set", embedding.ErrEmbedding)
	}

	in := embeddingRequest{Model: p.model, Input: []string{text}, Task: p.task(taskType)}
	header := http.Header{"Authorization": {"Bearer " + p.apiKey}}

	var out embeddingResponse
	if err := embedding.PostJSON(ctx, p.client, p.baseURL, header, in, &out); err != nil {
		return nil, fmt.Errorf("jina: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding from jina", embedding.ErrEmbedding)
	}

	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: embedding.Normalize(out.Data[0].Embedding)},
	}, nil
}
