// ABOUTME: Embedding models for vector indexing and similarity search
// ABOUTME: Defines Embedding and VectorSearchResult structures
package models

// Embedding pairs a chunk's text with its embedding vector
type Embedding struct {
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// VectorSearchResult represents a search result with similarity score
type VectorSearchResult struct {
	Text            string  `json:"text"`
	SimilarityScore float64 `json:"similarity_score"`
}

// ResultTexts returns the chunk text of every result in order
func ResultTexts(results []VectorSearchResult) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts
}
