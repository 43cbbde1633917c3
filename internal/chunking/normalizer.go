package chunking

import "strings"

// WhitespaceNormalizer normalizes whitespace in segments.
// It is optional and not part of the default pipeline: normalizing mutates
// segment content, which breaks offset-based reconstruction of the source.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process normalizes whitespace in segments and drops empty ones
func (w *WhitespaceNormalizer) Process(segments []Segment) []Segment {
	result := make([]Segment, 0, len(segments))

	for _, seg := range segments {
		content := seg.Content

		// Normalize line endings
		content = strings.ReplaceAll(content, "\r\n", "\n")
		content = strings.ReplaceAll(content, "\r", "\n")

		// Collapse multiple spaces (but preserve newlines)
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			for strings.Contains(line, "  ") {
				line = strings.ReplaceAll(line, "  ", " ")
			}
			lines[i] = strings.TrimSpace(line)
		}
		content = strings.Join(lines, "\n")

		// Remove excessive blank lines
		for strings.Contains(content, "\n\n\n") {
			content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
		}

		content = strings.TrimSpace(content)

		if len(content) > 0 {
			normalized := seg
			normalized.Content = content
			result = append(result, normalized)
		}
	}

	return result
}

// Name returns the processor name
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 5 - runs after the chunker
func (w *WhitespaceNormalizer) Order() int {
	return 5
}
