// Package rag turns a question into a grounded answer: retrieve chunks,
// build context, generate, record the interaction.
package rag

import (
	"context"
	"fmt"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/events"
	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orchestratorModule = "rag_generator"
	tracerName         = "pdf-rag-be/pkg/rag"
)

// User-facing messages.
const (
	MsgNoBackend        = "No language model is currently available. Please configure a Gemini or OpenAI API key or ensure Ollama is running."
	MsgNoDocuments      = "I don't have any relevant documents to answer your question."
	MsgNoDocumentsNote  = "No relevant documents found in the knowledge base."
	MsgGenerationFailed = "Sorry, I couldn't generate a response. There might be an issue with the language model."
	msgUnexpectedPrefix = "An error occurred while processing your question: "

	ErrTextNoBackend        = "No LLM available"
	ErrTextGenerationFailed = "LLM generation failed"
)

// Generator is the slice of llm.Registry the orchestrator uses.
type Generator interface {
	IsAnyAvailable(ctx context.Context) bool
	GenerateResponse(ctx context.Context, question, retrieved, name string, opts ...llm.Option) (string, error)
	AvailableBackends(ctx context.Context) []string
	SetDefaultBackend(ctx context.Context, name string) bool
}

var _ Generator = (*llm.Registry)(nil)

// HistoryRecorder persists completed interactions.
type HistoryRecorder interface {
	SaveInteraction(ctx context.Context, interaction *entity.Interaction) error
}

// Response is always well formed. Error is set on every failure path and
// Note only when nothing relevant was retrieved.
type Response struct {
	Answer  string           `json:"answer"`
	Sources []string         `json:"sources"`
	Chunks  []RetrievedChunk `json:"chunks"`
	Note    string           `json:"note,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type Orchestrator struct {
	retriever *Retriever
	generator Generator
	history   HistoryRecorder
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logger.ILogger
	tracer    trace.Tracer
	clock     func() time.Time
}

type OrchestratorOption func(*Orchestrator)

func WithPublisher(p events.Publisher) OrchestratorOption {
	return func(o *Orchestrator) { o.publisher = p }
}

func WithMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithClock(clock func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.clock = clock }
}

func NewOrchestrator(retriever *Retriever, generator Generator, history HistoryRecorder, log logger.ILogger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		retriever: retriever,
		generator: generator,
		history:   history,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateResponse answers query with the named backend (default when
// empty) over the top k chunks. It never returns an error: every failure is
// folded into the response.
func (o *Orchestrator) GenerateResponse(ctx context.Context, query, backendName string, k int) (resp Response) {
	ctx, span := o.tracer.Start(ctx, "rag.GenerateResponse", trace.WithAttributes(
		attribute.String("rag.backend", backendName),
		attribute.Int("rag.k", k),
	))
	defer span.End()

	if !o.generator.IsAnyAvailable(ctx) {
		o.metrics.ObserveQuery(metrics.OutcomeNoBackend, 0)
		span.SetStatus(codes.Error, ErrTextNoBackend)
		return Response{
			Answer:  MsgNoBackend,
			Sources: []string{},
			Chunks:  []RetrievedChunk{},
			Error:   ErrTextNoBackend,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			resp = o.unexpected(span, fmt.Errorf("%v", r))
		}
	}()

	retrieved := o.retrieve(ctx, query, k)
	if err := ctx.Err(); err != nil {
		return o.unexpected(span, err)
	}

	if len(retrieved.Chunks) == 0 {
		answer, err := o.generate(ctx, query, "", backendName)
		if err != nil || answer == "" {
			answer = MsgNoDocuments
		}
		o.metrics.ObserveQuery(metrics.OutcomeNoDocuments, 0)
		return Response{
			Answer:  answer,
			Sources: []string{},
			Chunks:  []RetrievedChunk{},
			Note:    MsgNoDocumentsNote,
		}
	}

	answer, err := o.generate(ctx, query, retrieved.Context, backendName)
	if err != nil || answer == "" {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.unexpected(span, ctxErr)
		}
		o.metrics.ObserveQuery(metrics.OutcomeGenerationFailed, len(retrieved.Chunks))
		span.SetStatus(codes.Error, ErrTextGenerationFailed)
		return Response{
			Answer:  MsgGenerationFailed,
			Sources: retrieved.Sources,
			Chunks:  retrieved.Chunks,
			Error:   ErrTextGenerationFailed,
		}
	}

	o.record(ctx, query, answer, retrieved)
	o.metrics.ObserveQuery(metrics.OutcomeAnswered, len(retrieved.Chunks))
	return Response{
		Answer:  answer,
		Sources: retrieved.Sources,
		Chunks:  retrieved.Chunks,
	}
}

func (o *Orchestrator) retrieve(ctx context.Context, query string, k int) RetrievedContext {
	ctx, span := o.tracer.Start(ctx, "rag.retrieve")
	defer span.End()

	retrieved := o.retriever.RetrieveWithSources(ctx, query, k)
	span.SetAttributes(attribute.Int("rag.chunks", len(retrieved.Chunks)))
	return retrieved
}

func (o *Orchestrator) generate(ctx context.Context, query, retrieved, backendName string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "rag.generate", trace.WithAttributes(
		attribute.Bool("rag.has_context", retrieved != ""),
	))
	defer span.End()

	start := o.clock()
	answer, err := o.generator.GenerateResponse(ctx, query, retrieved, backendName)
	o.metrics.ObserveGeneration(backendName, o.clock().Sub(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn(orchestratorModule, "Generation failed", map[string]interface{}{"error": err.Error()})
	}
	return answer, err
}

// record saves the interaction and announces it. Neither failure reaches
// the caller.
func (o *Orchestrator) record(ctx context.Context, query, answer string, retrieved RetrievedContext) {
	ctx, span := o.tracer.Start(ctx, "rag.record")
	defer span.End()

	interaction := &entity.Interaction{
		Type:      entity.InteractionType,
		Query:     query,
		Answer:    answer,
		Sources:   retrieved.Sources,
		NumChunks: len(retrieved.Chunks),
		Timestamp: o.clock(),
	}

	if o.history != nil {
		if err := o.history.SaveInteraction(ctx, interaction); err != nil {
			span.RecordError(err)
			o.logger.Error(orchestratorModule, "Error saving chat interaction", map[string]interface{}{"error": err.Error()})
		}
	}

	if o.publisher != nil {
		evt := events.New(events.TypeInteractionRecorded, map[string]interface{}{
			"query":      query,
			"sources":    retrieved.Sources,
			"num_chunks": len(retrieved.Chunks),
		})
		if err := o.publisher.Publish(ctx, evt); err != nil {
			o.logger.Warn(orchestratorModule, "Failed to publish interaction event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (o *Orchestrator) unexpected(span trace.Span, err error) Response {
	o.logger.Error(orchestratorModule, "Error in RAG generation", map[string]interface{}{"error": err.Error()})
	o.metrics.ObserveQuery(metrics.OutcomeError, 0)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return Response{
		Answer:  msgUnexpectedPrefix + err.Error(),
		Sources: []string{},
		Chunks:  []RetrievedChunk{},
		Error:   err.Error(),
	}
}

func (o *Orchestrator) AvailableBackends(ctx context.Context) []string {
	return o.generator.AvailableBackends(ctx)
}

func (o *Orchestrator) SetDefaultBackend(ctx context.Context, name string) bool {
	return o.generator.SetDefaultBackend(ctx, name)
}
