package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/chunker"
	"pdf-rag-be/pkg/embedding"
	"pdf-rag-be/pkg/events"
	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/ragerror"
	"pdf-rag-be/pkg/vectorstore"
	"pdf-rag-be/pkg/vectorstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	available bool
	answer    string
	err       error
	panicWith any
	calls     []string // retrieved context per call
}

func (g *fakeGenerator) IsAnyAvailable(context.Context) bool { return g.available }
func (g *fakeGenerator) AvailableBackends(context.Context) []string {
	if g.available {
		return []string{llm.BackendOllama}
	}
	return []string{}
}
func (g *fakeGenerator) SetDefaultBackend(_ context.Context, name string) bool {
	return g.available && name == llm.BackendOllama
}
func (g *fakeGenerator) GenerateResponse(_ context.Context, _, retrieved, _ string, _ ...llm.Option) (string, error) {
	g.calls = append(g.calls, retrieved)
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	return g.answer, g.err
}

type fakeHistory struct {
	saved []*entity.Interaction
	err   error
}

func (h *fakeHistory) SaveInteraction(_ context.Context, i *entity.Interaction) error {
	if h.err != nil {
		return h.err
	}
	h.saved = append(h.saved, i)
	return nil
}

type fakePublisher struct {
	published []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

type fixture struct {
	orch      *Orchestrator
	gen       *fakeGenerator
	history   *fakeHistory
	publisher *fakePublisher
	store     *vectorstore.Store
}

func newFixture(t *testing.T, gen *fakeGenerator) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	store := vectorstore.NewStore(memory.NewEngine(), embedding.NewHashProvider(64), log)
	history := &fakeHistory{}
	publisher := &fakePublisher{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	orch := NewOrchestrator(NewRetriever(store, log, DefaultK), gen, history, log,
		WithPublisher(publisher),
		WithClock(func() time.Time { return now }),
	)
	return &fixture{orch: orch, gen: gen, history: history, publisher: publisher, store: store}
}

// indexThreeChunks stores exactly three chunks of doc.pdf.
func (f *fixture) indexThreeChunks(t *testing.T) {
	t.Helper()
	chunks := make([]chunker.Chunk, 3)
	for i := range chunks {
		chunks[i] = chunker.Chunk{
			Text:     fmt.Sprintf("paris is the capital of france part %d", i),
			Metadata: map[string]any{chunker.MetaDocumentName: "doc.pdf", chunker.MetaChunkIndex: i},
		}
	}
	require.True(t, f.store.AddDocuments(context.Background(), chunks))
}

func TestOrchestrator_NoBackend(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: false})
	f.indexThreeChunks(t)

	resp := f.orch.GenerateResponse(context.Background(), "capital of france?", "", 5)

	assert.Equal(t, MsgNoBackend, resp.Answer)
	assert.Equal(t, ErrTextNoBackend, resp.Error)
	assert.Empty(t, resp.Sources)
	assert.Empty(t, resp.Chunks)
	assert.Empty(t, f.gen.calls)
	assert.Empty(t, f.history.saved)
}

func TestOrchestrator_NoDocuments(t *testing.T) {
	t.Run("generated fallback", func(t *testing.T) {
		f := newFixture(t, &fakeGenerator{available: true, answer: "general knowledge answer"})

		resp := f.orch.GenerateResponse(context.Background(), "anything?", "", 5)

		assert.Equal(t, "general knowledge answer", resp.Answer)
		assert.Equal(t, MsgNoDocumentsNote, resp.Note)
		assert.Empty(t, resp.Error)
		assert.NotNil(t, resp.Sources)
		assert.Empty(t, resp.Sources)
		assert.Empty(t, resp.Chunks)
		assert.Equal(t, []string{""}, f.gen.calls, "generation must run without context")
		assert.Empty(t, f.history.saved)
	})

	t.Run("generation fails", func(t *testing.T) {
		f := newFixture(t, &fakeGenerator{available: true, err: ragerror.ErrGenerationFailed})

		resp := f.orch.GenerateResponse(context.Background(), "anything?", "", 5)

		assert.Equal(t, MsgNoDocuments, resp.Answer)
		assert.Equal(t, MsgNoDocumentsNote, resp.Note)
		assert.Empty(t, resp.Error)
	})
}

func TestOrchestrator_Success(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: true, answer: "Paris."})
	f.indexThreeChunks(t)

	resp := f.orch.GenerateResponse(context.Background(), "capital of france?", "", 5)

	assert.Equal(t, "Paris.", resp.Answer)
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Note)
	assert.Equal(t, []string{"doc.pdf"}, resp.Sources)
	require.Len(t, resp.Chunks, 3)
	for _, c := range resp.Chunks {
		assert.Equal(t, "doc.pdf", c.Source)
		assert.NotNil(t, c.Distance)
	}

	require.Len(t, f.gen.calls, 1)
	assert.Contains(t, f.gen.calls[0], "part 0")
	assert.Contains(t, f.gen.calls[0], "\n\n")

	require.Len(t, f.history.saved, 1)
	saved := f.history.saved[0]
	assert.Equal(t, entity.InteractionType, saved.Type)
	assert.Equal(t, "capital of france?", saved.Query)
	assert.Equal(t, "Paris.", saved.Answer)
	assert.Equal(t, []string{"doc.pdf"}, saved.Sources)
	assert.Equal(t, 3, saved.NumChunks)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), saved.Timestamp)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.TypeInteractionRecorded, f.publisher.published[0].EventType())
}

func TestOrchestrator_GenerationFailedWithChunks(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: true, err: fmt.Errorf("%w: boom", ragerror.ErrGenerationFailed)})
	f.indexThreeChunks(t)

	resp := f.orch.GenerateResponse(context.Background(), "capital of france?", "", 2)

	assert.Equal(t, MsgGenerationFailed, resp.Answer)
	assert.Equal(t, ErrTextGenerationFailed, resp.Error)
	assert.Equal(t, []string{"doc.pdf"}, resp.Sources)
	assert.Len(t, resp.Chunks, 2)
	assert.Empty(t, f.history.saved)
	assert.Empty(t, f.publisher.published)
}

func TestOrchestrator_EmptyAnswerIsFailure(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: true, answer: ""})
	f.indexThreeChunks(t)

	resp := f.orch.GenerateResponse(context.Background(), "q", "", 5)
	assert.Equal(t, MsgGenerationFailed, resp.Answer)
	assert.Equal(t, ErrTextGenerationFailed, resp.Error)
}

func TestOrchestrator_PanicIsRecovered(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: true, panicWith: "backend exploded"})
	f.indexThreeChunks(t)

	resp := f.orch.GenerateResponse(context.Background(), "q", "", 5)

	assert.Equal(t, "An error occurred while processing your question: backend exploded", resp.Answer)
	assert.Equal(t, "backend exploded", resp.Error)
	assert.Empty(t, resp.Sources)
	assert.Empty(t, resp.Chunks)
}

func TestOrchestrator_CanceledContext(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: true, answer: "never"})
	f.indexThreeChunks(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := f.orch.GenerateResponse(ctx, "q", "", 5)

	assert.Equal(t, "An error occurred while processing your question: context canceled", resp.Answer)
	assert.Equal(t, context.Canceled.Error(), resp.Error)
	assert.Empty(t, f.gen.calls)
}

func TestOrchestrator_HistoryFailureIsNotSurfaced(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: true, answer: "Paris."})
	f.history.err = errors.New("disk full")
	f.indexThreeChunks(t)

	resp := f.orch.GenerateResponse(context.Background(), "capital?", "", 5)
	assert.Equal(t, "Paris.", resp.Answer)
	assert.Empty(t, resp.Error)
	assert.Len(t, f.publisher.published, 1)
}

func TestOrchestrator_BackendPassThrough(t *testing.T) {
	f := newFixture(t, &fakeGenerator{available: true})
	assert.Equal(t, []string{llm.BackendOllama}, f.orch.AvailableBackends(context.Background()))
	assert.True(t, f.orch.SetDefaultBackend(context.Background(), llm.BackendOllama))
	assert.False(t, f.orch.SetDefaultBackend(context.Background(), llm.BackendGemini))
}
