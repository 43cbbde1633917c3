package domain

import "time"

// QAResult is the output of one completed QA pipeline run
type QAResult struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Trace    *TraceGraph `json:"trace"`
}

// QARecord is a persisted QA run
type QARecord struct {
	ID        string      `json:"id"`
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	Trace     *TraceGraph `json:"trace,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// StreamEventType identifies the kind of a streaming event
type StreamEventType string

const (
	// StreamEventTrace carries the full trace graph; always emitted first
	StreamEventTrace StreamEventType = "trace"

	// StreamEventToken carries one answer token with a trailing separator
	StreamEventToken StreamEventType = "token"
)

// StreamEvent is one frame of the streaming wire contract
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	Data any             `json:"data"`
}
