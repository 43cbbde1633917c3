package domain

import (
	"encoding/json"
	"testing"
)

// The serialized trace shape is consumed by external visualizers and
// persisted-trace readers; these tests pin the field names.

func TestTraceGraph_JSONShape(t *testing.T) {
	graph := &TraceGraph{
		Nodes: []TraceNode{
			{ID: "question_1", Type: NodeTypeQuestion, Content: "what is the sky?", Metadata: map[string]any{}},
			{ID: "context_2", Type: NodeTypeContext, Content: "the sky is blue", Metadata: map[string]any{"similarity": 0.9}},
		},
		Edges: []TraceEdge{
			{Source: "question_1", Target: "context_2", Label: EdgeLabelRetrieves},
		},
	}

	data, err := json.Marshal(graph)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes, ok := decoded["nodes"].([]any)
	if !ok || len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %v", decoded["nodes"])
	}
	first := nodes[0].(map[string]any)
	for _, field := range []string{"id", "type", "content", "metadata"} {
		if _, ok := first[field]; !ok {
			t.Errorf("node missing field %q", field)
		}
	}
	if first["id"] != "question_1" || first["type"] != "question" {
		t.Errorf("unexpected node: %v", first)
	}

	edges, ok := decoded["edges"].([]any)
	if !ok || len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %v", decoded["edges"])
	}
	edge := edges[0].(map[string]any)
	if edge["source"] != "question_1" || edge["target"] != "context_2" || edge["label"] != "retrieves" {
		t.Errorf("unexpected edge: %v", edge)
	}
}

func TestNodeTypeVocabulary(t *testing.T) {
	types := []NodeType{NodeTypeQuestion, NodeTypeContext, NodeTypeReasoning, NodeTypeAnswer}
	want := []string{"question", "context", "reasoning", "answer"}

	for i, typ := range types {
		if string(typ) != want[i] {
			t.Errorf("expected node type %q, got %q", want[i], typ)
		}
	}
}
