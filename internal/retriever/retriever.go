// Package retriever ranks stored chunks against a query embedding.
//
// Retrieval is an exhaustive scan: every corpus entry is scored on each
// query, O(corpus size x vector dimension). This is a deliberate scaling
// limit - a production-scale corpus needs an index behind the same
// contract (ranked top-K with scores), with no caller-visible change.
package retriever

import (
	"fmt"
	"sort"

	"github.com/viant/vec/search"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// Retrieve returns the topK corpus entries most similar to the query
// embedding, ranked by cosine similarity descending.
//
// Entries with a nil embedding are skipped, not scored as zero. The sort is
// stable, so equal similarities keep corpus order; the corpus contract
// (ordered by document_id, chunk_index) makes ties deterministic. Zero-norm
// vectors have undefined cosine similarity and score 0 to keep the scan
// total. topK must be positive.
func Retrieve(query []float32, corpus []*domain.Chunk, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}

	queryVec := search.Float32s(query)
	queryMag := queryVec.Magnitude()

	results := make([]domain.RetrievedChunk, 0, len(corpus))
	for _, chunk := range corpus {
		if chunk == nil || chunk.Embedding == nil {
			continue
		}

		results = append(results, domain.RetrievedChunk{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
			Similarity: CosineSimilarity(queryVec, queryMag, chunk.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|) using the SIMD-accelerated
// vector primitives. Zero-norm or dimension-mismatched operands score 0.
func CosineSimilarity(query search.Float32s, queryMag float32, other []float32) float64 {
	if len(query) != len(other) {
		return 0
	}
	otherMag := search.Float32s(other).Magnitude()
	if queryMag == 0 || otherMag == 0 {
		return 0
	}
	return float64(1 - query.CosineDistanceWithMagnitude(other, queryMag, otherMag))
}
