package domain

// NodeType tags a trace node with its role in a QA run.
// The vocabulary is part of the serialized trace contract and must not drift.
type NodeType string

const (
	NodeTypeQuestion  NodeType = "question"
	NodeTypeContext   NodeType = "context"
	NodeTypeReasoning NodeType = "reasoning"
	NodeTypeAnswer    NodeType = "answer"
)

// Edge labels describing the causal relation between trace nodes
const (
	EdgeLabelRetrieves = "retrieves"
	EdgeLabelReasons   = "reasons"
	EdgeLabelProduces  = "produces"
)

// TraceNode is one step recorded during a QA run.
// IDs are unique within a run, not across runs.
type TraceNode struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// TraceEdge is a directed edge between two trace nodes
type TraceEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// TraceGraph is the directed acyclic record of one QA run, rooted at the
// question node. The JSON field names are consumed by downstream
// visualizers and persisted trace readers.
type TraceGraph struct {
	Nodes []TraceNode `json:"nodes"`
	Edges []TraceEdge `json:"edges"`
}
