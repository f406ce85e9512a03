// ABOUTME: In-process vector index with brute-force cosine similarity search
// ABOUTME: Holds chunk embeddings in memory for the lifetime of a session
package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/harper/docgraph/internal/models"
)

// MemoryBuilder builds MemoryIndex values
type MemoryBuilder struct {
	embedder Embedder
}

// NewMemoryBuilder creates a builder that embeds chunks with embedder
func NewMemoryBuilder(embedder Embedder) *MemoryBuilder {
	return &MemoryBuilder{embedder: embedder}
}

// Build embeds every chunk and returns a new index
func (b *MemoryBuilder) Build(ctx context.Context, chunks []string) (Index, error) {
	vectors, err := b.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]models.Embedding, len(chunks))
	for i := range chunks {
		entries[i] = models.Embedding{Text: chunks[i], Vector: vectors[i]}
	}
	return &MemoryIndex{embedder: b.embedder, entries: entries}, nil
}

// MemoryIndex is an immutable in-memory index
type MemoryIndex struct {
	embedder Embedder
	entries  []models.Embedding
}

// Len implements Index
func (m *MemoryIndex) Len() int {
	return len(m.entries)
}

// SimilaritySearch performs cosine similarity search across all entries.
// Ties keep insertion order.
func (m *MemoryIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]models.VectorSearchResult, error) {
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}

	queryVector, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]models.VectorSearchResult, len(m.entries))
	for i, e := range m.entries {
		results[i] = models.VectorSearchResult{
			Text:            e.Text,
			SimilarityScore: cosineSimilarity(queryVector, e.Vector),
		}
	}

	// Sort by similarity score (descending)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
