package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven/mocks"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driving"
	"github.com/ragline-labs/ragline-core/internal/runtime"
)

type qaFixture struct {
	service    driving.QAService
	embedding  *mocks.MockEmbeddingService
	generation *mocks.MockGenerationService
	chunkStore *mocks.MockChunkStore
	qaStore    *mocks.MockQAStore
}

func newQAFixture(t *testing.T, topK int) *qaFixture {
	t.Helper()

	embedding := mocks.NewMockEmbeddingService()
	generation := mocks.NewMockGenerationService()
	services := runtime.NewServices()
	services.SetEmbeddingService(embedding)
	services.SetGenerationService(generation)

	chunkStore := mocks.NewMockChunkStore()
	qaStore := mocks.NewMockQAStore()

	return &qaFixture{
		service: NewQAService(QAServiceConfig{
			ChunkStore: chunkStore,
			QAStore:    qaStore,
			Services:   services,
			TopK:       topK,
		}),
		embedding:  embedding,
		generation: generation,
		chunkStore: chunkStore,
		qaStore:    qaStore,
	}
}

func seedChunk(t *testing.T, store *mocks.MockChunkStore, id, content string, embedding []float32) {
	t.Helper()
	err := store.SaveBatch(context.Background(), []*domain.Chunk{{
		ID:         id,
		DocumentID: "doc-1",
		Content:    content,
		Embedding:  embedding,
	}})
	if err != nil {
		t.Fatalf("seed chunk: %v", err)
	}
}

func nodesByType(graph *domain.TraceGraph, nodeType domain.NodeType) []domain.TraceNode {
	var out []domain.TraceNode
	for _, n := range graph.Nodes {
		if n.Type == nodeType {
			out = append(out, n)
		}
	}
	return out
}

func findEdge(graph *domain.TraceGraph, source, target string) *domain.TraceEdge {
	for i, e := range graph.Edges {
		if e.Source == source && e.Target == target {
			return &graph.Edges[i]
		}
	}
	return nil
}

func TestAsk_BuildsTraceGraph(t *testing.T) {
	f := newQAFixture(t, 2)
	f.embedding.SetFixedEmbedding("what is the sky?", []float32{1, 0})
	f.generation.SetAnswer("The sky is blue.")
	seedChunk(t, f.chunkStore, "c1", "the sky is blue", []float32{1, 0})
	seedChunk(t, f.chunkStore, "c2", "grass is green", []float32{0, 1})

	record, err := f.service.Ask(context.Background(), "what is the sky?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if record.Answer != "The sky is blue." {
		t.Errorf("unexpected answer: %q", record.Answer)
	}

	graph := record.Trace
	questions := nodesByType(graph, domain.NodeTypeQuestion)
	contexts := nodesByType(graph, domain.NodeTypeContext)
	reasonings := nodesByType(graph, domain.NodeTypeReasoning)
	answers := nodesByType(graph, domain.NodeTypeAnswer)

	if len(questions) != 1 || len(reasonings) != 1 || len(answers) != 1 {
		t.Fatalf("expected 1 question, 1 reasoning, 1 answer; got %d/%d/%d",
			len(questions), len(reasonings), len(answers))
	}
	if len(contexts) != 2 {
		t.Fatalf("expected 2 context nodes, got %d", len(contexts))
	}
	if questions[0].ID != "question_1" {
		t.Errorf("expected question node id question_1, got %s", questions[0].ID)
	}

	// Best match first: the context node list follows similarity rank
	if contexts[0].Content != "the sky is blue" {
		t.Errorf("expected best match first, got %q", contexts[0].Content)
	}
	if _, ok := contexts[0].Metadata["similarity"]; !ok {
		t.Error("expected similarity metadata on context node")
	}

	for _, c := range contexts {
		edge := findEdge(graph, questions[0].ID, c.ID)
		if edge == nil {
			t.Fatalf("missing edge question -> %s", c.ID)
		}
		if edge.Label != domain.EdgeLabelRetrieves {
			t.Errorf("expected retrieves label, got %s", edge.Label)
		}
	}
	if edge := findEdge(graph, questions[0].ID, reasonings[0].ID); edge == nil || edge.Label != domain.EdgeLabelReasons {
		t.Error("expected question -[reasons]-> reasoning edge")
	}
	if edge := findEdge(graph, reasonings[0].ID, answers[0].ID); edge == nil || edge.Label != domain.EdgeLabelProduces {
		t.Error("expected reasoning -[produces]-> answer edge")
	}

	records := f.qaStore.Records()
	if len(records) != 1 || records[0].ID != record.ID {
		t.Errorf("expected the run to be persisted once")
	}
}

func TestAsk_PromptContainsContextAndQuestion(t *testing.T) {
	f := newQAFixture(t, 5)
	f.embedding.SetFixedEmbedding("q", []float32{1, 0})
	seedChunk(t, f.chunkStore, "c1", "relevant context", []float32{1, 0})

	if _, err := f.service.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if len(f.generation.Prompts) != 1 {
		t.Fatalf("expected exactly one generation call, got %d", len(f.generation.Prompts))
	}
	prompt := f.generation.Prompts[0]
	if !strings.Contains(prompt, "relevant context") {
		t.Error("expected prompt to contain retrieved context")
	}
	if !strings.Contains(prompt, "Question: q") {
		t.Error("expected prompt to contain the question")
	}
	if !strings.Contains(prompt, "I don't have enough information") {
		t.Error("expected prompt to carry the refusal instruction")
	}
}

func TestAsk_EmptyCorpusStillGenerates(t *testing.T) {
	f := newQAFixture(t, 5)
	f.generation.SetAnswer("I don't have enough information to answer this question.")

	record, err := f.service.Ask(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("Ask failed on empty corpus: %v", err)
	}
	if len(nodesByType(record.Trace, domain.NodeTypeContext)) != 0 {
		t.Error("expected no context nodes for an empty corpus")
	}
	if len(nodesByType(record.Trace, domain.NodeTypeAnswer)) != 1 {
		t.Error("expected an answer node even without context")
	}
}

func TestAsk_EmbeddingFailure(t *testing.T) {
	f := newQAFixture(t, 5)
	f.embedding.SetFailNext(true)

	_, err := f.service.Ask(context.Background(), "q")
	if !errors.Is(err, domain.ErrRetrievalFailed) {
		t.Fatalf("expected ErrRetrievalFailed, got %v", err)
	}
	if len(f.qaStore.Records()) != 0 {
		t.Error("expected nothing persisted after a failed run")
	}
}

func TestAsk_GenerationFailure(t *testing.T) {
	f := newQAFixture(t, 5)
	f.generation.SetFailNext(true)

	_, err := f.service.Ask(context.Background(), "q")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if len(f.qaStore.Records()) != 0 {
		t.Error("expected nothing persisted after a failed run")
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	f := newQAFixture(t, 5)

	if _, err := f.service.Ask(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAsk_NoGenerationService(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService()
	services := runtime.NewServices()
	services.SetEmbeddingService(embedding)

	svc := NewQAService(QAServiceConfig{
		ChunkStore: mocks.NewMockChunkStore(),
		QAStore:    mocks.NewMockQAStore(),
		Services:   services,
	})

	if _, err := svc.Ask(context.Background(), "q"); !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestHistory_Pagination(t *testing.T) {
	f := newQAFixture(t, 5)
	for i := 0; i < 3; i++ {
		if _, err := f.service.Ask(context.Background(), "q"); err != nil {
			t.Fatalf("Ask failed: %v", err)
		}
	}

	records, err := f.service.History(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}
