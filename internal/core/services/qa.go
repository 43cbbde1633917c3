package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driving"
	"github.com/ragline-labs/ragline-core/internal/retriever"
	"github.com/ragline-labs/ragline-core/internal/runtime"
	"github.com/ragline-labs/ragline-core/internal/trace"
)

// Ensure qaService implements QAService
var _ driving.QAService = (*qaService)(nil)

// answerPrompt is the fixed instruction template for the generation call.
// The refusal clause handles empty or insufficient context; the pipeline
// never special-cases empty retrieval itself.
const answerPrompt = `Answer the question based only on the provided context. If the context doesn't contain the information needed to answer the question, reply with "I don't have enough information to answer this question."

Context:
%s

Question: %s

Answer:`

// reasoningContent is the content of the reasoning trace node
const reasoningContent = "Analyzing context and formulating answer..."

// pipelineState enumerates the linear QA pipeline states
type pipelineState int

const (
	stateRetrieve pipelineState = iota
	stateGenerate
	stateDone
)

// runState is the typed payload passed by value between pipeline states
type runState struct {
	question       string
	questionNodeID string
	context        string
	answer         string
}

// qaService runs the retrieve -> generate pipeline and persists completed runs
type qaService struct {
	chunkStore driven.ChunkStore
	qaStore    driven.QAStore
	services   *runtime.Services
	topK       int
	logger     *slog.Logger
}

// QAServiceConfig holds dependencies for the QA service
type QAServiceConfig struct {
	ChunkStore driven.ChunkStore
	QAStore    driven.QAStore
	Services   *runtime.Services
	TopK       int
	Logger     *slog.Logger
}

// NewQAService creates a new QAService.
// AI services (embedding, generation) are accessed dynamically via
// runtime.Services.
func NewQAService(cfg QAServiceConfig) driving.QAService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &qaService{
		chunkStore: cfg.ChunkStore,
		qaStore:    cfg.QAStore,
		services:   cfg.Services,
		topK:       topK,
		logger:     logger,
	}
}

// Ask runs the pipeline for one question.
// Each run owns its recorder; concurrent runs do not share state. A failure
// at any state aborts the run: the partial graph is discarded and nothing
// is persisted.
func (s *qaService) Ask(ctx context.Context, question string) (*domain.QARecord, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidArgument)
	}

	start := time.Now()
	rec := trace.NewRecorder()
	st := runState{question: question}

	var err error
	for state := stateRetrieve; state != stateDone; {
		switch state {
		case stateRetrieve:
			st, err = s.retrieve(ctx, rec, st)
			if err != nil {
				return nil, err
			}
			state = stateGenerate
		case stateGenerate:
			st, err = s.generate(ctx, rec, st)
			if err != nil {
				return nil, err
			}
			state = stateDone
		}
	}

	record := &domain.QARecord{
		ID:        uuid.NewString(),
		Question:  st.question,
		Answer:    st.answer,
		Trace:     rec.Finalize(),
		CreatedAt: time.Now(),
	}
	if err := s.qaStore.SaveRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("save qa record: %w", err)
	}

	s.logger.Info("qa run completed",
		"record_id", record.ID,
		"trace_nodes", len(record.Trace.Nodes),
		"took", time.Since(start),
	)
	return record, nil
}

// History retrieves past QA runs, newest first
func (s *qaService) History(ctx context.Context, limit, offset int) ([]*domain.QARecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.qaStore.History(ctx, limit, offset)
}

// retrieve embeds the question, records the question node, and ranks the
// corpus snapshot; every hit becomes a context node edged from the question.
func (s *qaService) retrieve(ctx context.Context, rec *trace.Recorder, st runState) (runState, error) {
	embedding := s.services.EmbeddingService()
	if embedding == nil {
		return st, fmt.Errorf("%w: no embedding service configured", domain.ErrRetrievalFailed)
	}

	queryEmbedding, err := embedding.EmbedQuery(ctx, st.question)
	if err != nil {
		return st, fmt.Errorf("%w: embed question: %v", domain.ErrRetrievalFailed, err)
	}

	questionID, err := rec.AddNode(st.question, domain.NodeTypeQuestion)
	if err != nil {
		return st, fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
	}
	st.questionNodeID = questionID

	corpus, err := s.chunkStore.LoadCorpus(ctx)
	if err != nil {
		return st, fmt.Errorf("%w: load corpus: %v", domain.ErrRetrievalFailed, err)
	}

	hits, err := retriever.Retrieve(queryEmbedding, corpus, s.topK)
	if err != nil {
		return st, fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
	}

	contexts := make([]string, 0, len(hits))
	for _, hit := range hits {
		_, err := rec.AddNode(hit.Content, domain.NodeTypeContext,
			trace.WithSource(questionID, domain.EdgeLabelRetrieves),
			trace.WithMetadata(map[string]any{"similarity": hit.Similarity}))
		if err != nil {
			return st, fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
		}
		contexts = append(contexts, hit.Content)
	}

	st.context = strings.Join(contexts, "\n\n")
	return st, nil
}

// generate records the reasoning node, issues one generation request with
// the fixed prompt, and records the answer node.
func (s *qaService) generate(ctx context.Context, rec *trace.Recorder, st runState) (runState, error) {
	generation := s.services.GenerationService()
	if generation == nil {
		return st, fmt.Errorf("%w: no generation service configured", domain.ErrGenerationFailed)
	}

	reasoningID, err := rec.AddNode(reasoningContent, domain.NodeTypeReasoning,
		trace.WithSource(st.questionNodeID, domain.EdgeLabelReasons))
	if err != nil {
		return st, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	prompt := fmt.Sprintf(answerPrompt, st.context, st.question)
	answer, err := generation.Generate(ctx, prompt)
	if err != nil {
		return st, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	if _, err := rec.AddNode(answer, domain.NodeTypeAnswer,
		trace.WithSource(reasoningID, domain.EdgeLabelProduces)); err != nil {
		return st, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	st.answer = answer
	return st, nil
}
