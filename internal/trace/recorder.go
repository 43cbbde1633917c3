// Package trace builds the directed graph recording one QA run.
package trace

import (
	"fmt"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// Recorder accumulates the trace graph of a single QA run.
//
// Nodes are held in an append-only arena and edge sources are validated
// against already-recorded node ids, so the graph is acyclic by
// construction. A Recorder is scoped to one run and is not safe for
// concurrent use; concurrent runs each get their own Recorder.
type Recorder struct {
	nodes   []domain.TraceNode
	edges   []domain.TraceEdge
	index   map[string]int
	counter int
}

// NewRecorder creates a recorder with an empty run started
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.StartRun()
	return r
}

// StartRun discards any previous graph and resets the node-id counter.
// Node ids are deterministic for a fixed sequence of AddNode calls.
func (r *Recorder) StartRun() {
	r.nodes = nil
	r.edges = nil
	r.index = make(map[string]int)
	r.counter = 0
}

type nodeOptions struct {
	sourceID  string
	edgeLabel string
	metadata  map[string]any
}

// Option configures an added node
type Option func(*nodeOptions)

// WithSource links the new node from an existing node with a labeled edge
func WithSource(sourceID, edgeLabel string) Option {
	return func(o *nodeOptions) {
		o.sourceID = sourceID
		o.edgeLabel = edgeLabel
	}
}

// WithMetadata attaches metadata to the new node
func WithMetadata(metadata map[string]any) Option {
	return func(o *nodeOptions) {
		o.metadata = metadata
	}
}

// AddNode records a node and, when a source is given, an edge source->node.
// The returned id has the form {type}_{n} with n increasing per call within
// the run. A source id that was not previously returned by this run is
// rejected.
func (r *Recorder) AddNode(content string, nodeType domain.NodeType, opts ...Option) (string, error) {
	var o nodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.sourceID != "" {
		if _, ok := r.index[o.sourceID]; !ok {
			return "", fmt.Errorf("%w: unknown source node %q", domain.ErrInvalidArgument, o.sourceID)
		}
	}

	r.counter++
	id := fmt.Sprintf("%s_%d", nodeType, r.counter)

	metadata := o.metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	r.nodes = append(r.nodes, domain.TraceNode{
		ID:       id,
		Type:     nodeType,
		Content:  content,
		Metadata: metadata,
	})
	r.index[id] = len(r.nodes) - 1

	if o.sourceID != "" {
		r.edges = append(r.edges, domain.TraceEdge{
			Source: o.sourceID,
			Target: id,
			Label:  o.edgeLabel,
		})
	}

	return id, nil
}

// Len returns the number of recorded nodes
func (r *Recorder) Len() int {
	return len(r.nodes)
}

// Finalize returns an immutable snapshot of the accumulated graph.
// Later AddNode or StartRun calls do not affect a returned snapshot.
func (r *Recorder) Finalize() *domain.TraceGraph {
	nodes := make([]domain.TraceNode, len(r.nodes))
	for i, n := range r.nodes {
		metadata := make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			metadata[k] = v
		}
		n.Metadata = metadata
		nodes[i] = n
	}

	edges := make([]domain.TraceEdge, len(r.edges))
	copy(edges, r.edges)

	return &domain.TraceGraph{Nodes: nodes, Edges: edges}
}
