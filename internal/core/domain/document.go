package domain

import "time"

// Document represents an uploaded knowledge-base document
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Chunk represents a retrievable segment of a document.
// Index is zero-based and contiguous within the owning document; chunks are
// deleted together with their document.
type Chunk struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Index      int            `json:"chunk_index"`
	Content    string         `json:"content"`
	Embedding  []float32      `json:"embedding,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RetrievedChunk is a corpus entry ranked against a query embedding
type RetrievedChunk struct {
	ChunkID    string         `json:"chunk_id"`
	DocumentID string         `json:"document_id"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity float64        `json:"similarity"`
}

// DocumentWithChunks combines a document with its chunks
type DocumentWithChunks struct {
	Document *Document `json:"document"`
	Chunks   []*Chunk  `json:"chunks"`
}
