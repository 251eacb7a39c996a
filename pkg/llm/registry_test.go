package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/ragerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name      string
	available bool
	answer    string
	err       error
	calls     int
	lastQ     string
	lastCtx   string
}

func (f *fakeBackend) Name() string                     { return f.name }
func (f *fakeBackend) IsAvailable(context.Context) bool { return f.available }
func (f *fakeBackend) GenerateResponse(_ context.Context, q, c string, _ ...Option) (string, error) {
	f.calls++
	f.lastQ, f.lastCtx = q, c
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestNewRegistry_DefaultIsFirstAvailable(t *testing.T) {
	ctx := context.Background()
	g := &fakeBackend{name: BackendGemini}
	o := &fakeBackend{name: BackendOllama, available: true}
	a := &fakeBackend{name: BackendOpenAI, available: true}

	r := NewRegistry(ctx, logger.NewNopLogger(), g, o, a)
	assert.Equal(t, BackendOllama, r.DefaultBackend())
	assert.Equal(t, []string{BackendGemini, BackendOllama, BackendOpenAI}, r.Names())
	assert.Equal(t, []string{BackendOllama, BackendOpenAI}, r.AvailableBackends(ctx))
	assert.True(t, r.IsAnyAvailable(ctx))
}

func TestNewRegistry_NoneAvailable(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(ctx, logger.NewNopLogger(), &fakeBackend{name: BackendGemini}, nil)

	assert.Equal(t, "", r.DefaultBackend())
	assert.False(t, r.IsAnyAvailable(ctx))
	assert.Empty(t, r.AvailableBackends(ctx))

	_, err := r.GenerateResponse(ctx, "q", "", "")
	assert.ErrorIs(t, err, ragerror.ErrNoBackend)
	assert.ErrorIs(t, err, ragerror.ErrBackendUnavailable)
}

func TestNewRegistry_DuplicateNamesKeepFirst(t *testing.T) {
	first := &fakeBackend{name: BackendOllama, available: true, answer: "first"}
	second := &fakeBackend{name: BackendOllama, available: true, answer: "second"}
	r := NewRegistry(context.Background(), logger.NewNopLogger(), first, second)

	assert.Equal(t, []string{BackendOllama}, r.Names())
	got, err := r.GenerateResponse(context.Background(), "q", "", "")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestRegistry_GenerateResponse(t *testing.T) {
	ctx := context.Background()
	genErr := fmt.Errorf("%w: boom", ragerror.ErrGenerationFailed)

	tests := []struct {
		name    string
		backend string
		wantErr error
		want    string
	}{
		{name: "default backend", backend: "", want: "from gemini"},
		{name: "explicit backend", backend: BackendOpenAI, want: "from openai"},
		{name: "unknown backend", backend: "claude", wantErr: ragerror.ErrUnknownBackend},
		{name: "unavailable backend", backend: BackendOllama, wantErr: ragerror.ErrBackendUnavailable},
		{name: "generation failure", backend: "broken", wantErr: ragerror.ErrGenerationFailed},
	}

	r := NewRegistry(ctx, logger.NewNopLogger(),
		&fakeBackend{name: BackendGemini, available: true, answer: "from gemini"},
		&fakeBackend{name: BackendOllama},
		&fakeBackend{name: BackendOpenAI, available: true, answer: "from openai"},
		&fakeBackend{name: "broken", available: true, err: genErr},
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.GenerateResponse(ctx, "question", "context", tt.backend)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_GenerateResponse_PassesQuestionAndContext(t *testing.T) {
	b := &fakeBackend{name: BackendGemini, available: true, answer: "ok"}
	r := NewRegistry(context.Background(), logger.NewNopLogger(), b)

	_, err := r.GenerateResponse(context.Background(), "the question", "the context", "")
	require.NoError(t, err)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, "the question", b.lastQ)
	assert.Equal(t, "the context", b.lastCtx)
}

func TestRegistry_AvailabilityRecheckedPerCall(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{name: BackendOllama, available: true, answer: "ok"}
	r := NewRegistry(ctx, logger.NewNopLogger(), b)

	b.available = false
	_, err := r.GenerateResponse(ctx, "q", "", "")
	assert.ErrorIs(t, err, ragerror.ErrBackendUnavailable)
	assert.Equal(t, 0, b.calls)
	// The default is not recomputed when it goes away.
	assert.Equal(t, BackendOllama, r.DefaultBackend())
}

func TestRegistry_SetDefaultBackend(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(ctx, logger.NewNopLogger(),
		&fakeBackend{name: BackendGemini, available: true},
		&fakeBackend{name: BackendOllama},
		&fakeBackend{name: BackendOpenAI, available: true},
	)

	assert.False(t, r.SetDefaultBackend(ctx, "unknown"))
	assert.False(t, r.SetDefaultBackend(ctx, BackendOllama))
	assert.Equal(t, BackendGemini, r.DefaultBackend())

	assert.True(t, r.SetDefaultBackend(ctx, BackendOpenAI))
	assert.Equal(t, BackendOpenAI, r.DefaultBackend())
}
