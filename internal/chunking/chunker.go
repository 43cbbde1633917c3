package chunking

import (
	"fmt"
	"strings"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// Config configures the chunker behavior
type Config struct {
	// MaxChunkSize is the maximum characters per segment
	MaxChunkSize int

	// Overlap is the number of trailing characters repeated at the start of
	// the next segment. Must satisfy 0 <= Overlap < MaxChunkSize.
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph boundaries
	PreserveParagraphs bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:       1000,
		Overlap:            200,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// breakLookback is how far back from the hard cut the chunker searches for a
// natural boundary before falling back to a hard cut.
const breakLookback = 100

// Chunker splits content into overlapping segments, preferring paragraph,
// sentence, then word boundaries over hard cuts.
// It is typically the first processor in the pipeline (Order = 0).
type Chunker struct {
	config Config
}

// Verify interface compliance
var _ PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
// Returns ErrInvalidConfiguration when the overlap is negative, or not
// smaller than the maximum chunk size.
func NewChunker(config Config) (*Chunker, error) {
	if config.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d",
			domain.ErrInvalidConfiguration, config.MaxChunkSize)
	}
	if config.Overlap < 0 || config.Overlap >= config.MaxChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must satisfy 0 <= overlap < max chunk size %d",
			domain.ErrInvalidConfiguration, config.Overlap, config.MaxChunkSize)
	}
	return &Chunker{config: config}, nil
}

// Process splits the incoming segments into bounded overlapping segments
func (c *Chunker) Process(segments []Segment) []Segment {
	var result []Segment
	index := 0

	for _, seg := range segments {
		result = append(result, c.splitContent(seg.Content, seg.StartOffset, &index)...)
	}

	return result
}

// Name returns the processor name
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0 - chunker should be first
func (c *Chunker) Order() int {
	return 0
}

// Split splits raw text into ordered overlapping segments.
// Empty input produces no segments; the segments cover the entire input in
// document order.
func (c *Chunker) Split(text string) []Segment {
	if text == "" {
		return nil
	}
	index := 0
	return c.splitContent(text, 0, &index)
}

// splitContent splits content into overlapping segments
func (c *Chunker) splitContent(content string, baseOffset int, index *int) []Segment {
	if content == "" {
		return nil
	}

	if len(content) <= c.config.MaxChunkSize {
		seg := Segment{
			Content:     content,
			Index:       *index,
			StartOffset: baseOffset,
			EndOffset:   baseOffset + len(content),
		}
		*index++
		return []Segment{seg}
	}

	var segments []Segment
	start := 0

	for start < len(content) {
		end := start + c.config.MaxChunkSize
		if end > len(content) {
			end = len(content)
		}

		// Prefer a natural boundary over a hard cut
		if end < len(content) {
			if breakPoint := c.findBreakPoint(content, start, end); breakPoint > start {
				end = breakPoint
			}
		}

		seg := Segment{
			Content:     content[start:end],
			Index:       *index,
			StartOffset: baseOffset + start,
			EndOffset:   baseOffset + end,
		}
		segments = append(segments, seg)
		*index++

		if end >= len(content) {
			break
		}

		// Move start with overlap, ensuring we always advance
		nextStart := end - c.config.Overlap
		if nextStart <= start {
			nextStart = start + 1
		}
		start = nextStart
	}

	return segments
}

// findBreakPoint finds a natural break point within the lookback window
func (c *Chunker) findBreakPoint(content string, start, maxEnd int) int {
	searchStart := maxEnd - breakLookback
	if searchStart < start {
		searchStart = start
	}

	searchContent := content[searchStart:maxEnd]

	// Try to break at paragraph boundary (double newline)
	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(searchContent, "\n\n"); idx != -1 {
			return searchStart + idx + 2
		}
	}

	// Try to break at sentence boundary
	if c.config.PreserveSentences {
		sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
		bestIdx := -1

		for _, ender := range sentenceEnders {
			if idx := strings.LastIndex(searchContent, ender); idx != -1 {
				endPos := idx + len(ender)
				if endPos > bestIdx {
					bestIdx = endPos
				}
			}
		}

		if bestIdx > 0 {
			return searchStart + bestIdx
		}
	}

	// Try to break at word boundary
	if idx := strings.LastIndex(searchContent, " "); idx != -1 {
		return searchStart + idx + 1
	}

	// No natural boundary found, use the hard cut
	return maxEnd
}
