package factory

import (
	"fmt"
	"time"

	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/llm/gemini"
	"pdf-rag-be/pkg/llm/ollama"
	"pdf-rag-be/pkg/llm/openai"
	"pdf-rag-be/pkg/ragerror"
)

type Settings struct {
	GeminiAPIKey string
	GeminiModel  string

	OllamaBaseURL string
	OllamaModel   string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	Timeout time.Duration

	// Breaker wraps every backend in a circuit breaker when set.
	Breaker *llm.BreakerSettings
}

func NewLLMProvider(providerType string, s Settings) (llm.Backend, error) {
	var backend llm.Backend
	switch providerType {
	case llm.BackendGemini:
		backend = gemini.NewGeminiProvider(s.GeminiAPIKey, s.GeminiModel, s.Timeout)
	case llm.BackendOllama:
		backend = ollama.NewOllamaProvider(s.OllamaBaseURL, s.OllamaModel, s.Timeout)
	case llm.BackendOpenAI:
		backend = openai.NewOpenAIProvider(s.OpenAIAPIKey, s.OpenAIBaseURL, s.OpenAIModel, s.Timeout)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", ragerror.ErrConfiguration, providerType)
	}

	if s.Breaker != nil {
		backend = llm.WithCircuitBreaker(backend, *s.Breaker)
	}
	return backend, nil
}

// NewBackends builds every known backend in registry order.
func NewBackends(s Settings) []llm.Backend {
	names := []string{llm.BackendGemini, llm.BackendOllama, llm.BackendOpenAI}
	backends := make([]llm.Backend, 0, len(names))
	for _, name := range names {
		b, err := NewLLMProvider(name, s)
		if err != nil {
			continue
		}
		backends = append(backends, b)
	}
	return backends
}
