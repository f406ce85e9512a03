// ABOUTME: Retriever fuses vector search, graph lookup and recent chat history
// ABOUTME: Produces the evidence and history blocks that feed answer synthesis
package core

import (
	"context"
	"fmt"

	"github.com/harper/docgraph/internal/graph"
	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/models"
	"github.com/harper/docgraph/internal/vectorindex"
)

// DefaultVectorTopK is how many chunks the vector channel contributes
const DefaultVectorTopK = 3

// EntityExtractor yields filtered entity strings for a piece of text
type EntityExtractor interface {
	Extract(text string) ([]string, error)
}

// FusedContext is everything the answer prompt needs
type FusedContext struct {
	Question string
	Evidence models.Evidence
	History  string
}

// Retriever assembles FusedContext for a question
type Retriever struct {
	extractor EntityExtractor
	topK      int
}

// NewRetriever creates a Retriever; topK <= 0 selects DefaultVectorTopK
func NewRetriever(extractor EntityExtractor, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultVectorTopK
	}
	return &Retriever{extractor: extractor, topK: topK}
}

// Retrieve runs the vector search, then the graph lookup (only when the
// question yields search terms), and formats history. Empty results from
// either channel produce empty blocks, not errors.
func (r *Retriever) Retrieve(ctx context.Context, question string, index vectorindex.Index, g *graph.Conn, history []models.Turn) (*FusedContext, error) {
	fc := &FusedContext{
		Question: question,
		History:  models.FormatHistory(history),
	}

	matches, err := index.SimilaritySearch(ctx, question, r.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	fc.Evidence.VectorChunks = models.ResultTexts(matches)

	terms, err := r.extractor.Extract(question)
	if err != nil {
		return nil, fmt.Errorf("failed to extract search terms: %w", err)
	}
	fc.Evidence.SearchTerms = terms

	if len(terms) > 0 {
		chunks, err := g.ContextForTerms(ctx, terms)
		if err != nil {
			return nil, fmt.Errorf("graph lookup failed: %w", err)
		}
		fc.Evidence.GraphChunks = chunks
	}

	log.Debug("retrieved context",
		"vector_chunks", len(fc.Evidence.VectorChunks),
		"graph_chunks", len(fc.Evidence.GraphChunks),
		"terms", terms)

	return fc, nil
}
