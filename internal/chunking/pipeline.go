package chunking

import (
	"sort"
	"sync"
)

// Segment is an ordered, possibly overlapping slice of a document's text
type Segment struct {
	Content     string
	Index       int
	StartOffset int
	EndOffset   int
}

// PostProcessor transforms a sequence of segments.
// Processors are ordered; the chunker runs first.
type PostProcessor interface {
	// Process transforms the segments
	Process(segments []Segment) []Segment

	// Name returns the processor name
	Name() string

	// Order determines processing order (lower runs first)
	Order() int
}

// Pipeline chains post-processors in order, starting with a Chunker.
// Input is raw document text; output is the segments ready for embedding.
type Pipeline struct {
	mu         sync.RWMutex
	processors []PostProcessor
	sorted     bool
}

// NewPipeline creates a new post-processor pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]PostProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order to the raw document content
func (p *Pipeline) Process(content string) []Segment {
	p.mu.Lock()
	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	p.mu.Unlock()

	p.mu.RLock()
	processors := make([]PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.RUnlock()

	if content == "" {
		return nil
	}

	segments := []Segment{
		{
			Content:     content,
			Index:       0,
			StartOffset: 0,
			EndOffset:   len(content),
		},
	}

	for _, proc := range processors {
		segments = proc.Process(segments)
	}

	return segments
}

// List returns processor names in order
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline creates a pipeline with the default chunker
func DefaultPipeline(config Config) (*Pipeline, error) {
	chunker, err := NewChunker(config)
	if err != nil {
		return nil, err
	}
	p := NewPipeline()
	p.Add(chunker)
	return p, nil
}
