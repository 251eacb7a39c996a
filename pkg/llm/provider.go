package llm

import (
	"context"
	"errors"
)

// Backend names, in registry enumeration order.
const (
	BackendGemini = "gemini"
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// ApplyOptions folds opts over a zero Options value.
func ApplyOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Backend is one text-generation service. GenerateResponse builds the final
// prompt from question and retrieved context with BuildPrompt. Failures are
// returned wrapped around ragerror.ErrGenerationFailed.
type Backend interface {
	Name() string

	GenerateResponse(ctx context.Context, question, retrieved string, opts ...Option) (string, error)

	// IsAvailable is a cheap liveness probe. It is consulted on every call
	// and may change between calls.
	IsAvailable(ctx context.Context) bool
}

var ErrListingUnsupported = errors.New("backend cannot list models")

// ModelLister is implemented by backends that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
