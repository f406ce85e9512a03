// ABOUTME: Vector index contracts shared by the in-memory and Weaviate backends
// ABOUTME: An index is built once from a chunk list and only supports similarity search
package vectorindex

import (
	"context"

	"github.com/harper/docgraph/internal/models"
)

// Embedder turns text into embedding vectors
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index answers top-k similarity queries over a fixed chunk set
type Index interface {
	// SimilaritySearch returns up to k chunks, most similar first
	SimilaritySearch(ctx context.Context, query string, k int) ([]models.VectorSearchResult, error)
	// Len reports how many chunks are indexed
	Len() int
}

// Builder creates a fresh Index from chunk texts, discarding any previous one
type Builder interface {
	Build(ctx context.Context, chunks []string) (Index, error)
}
