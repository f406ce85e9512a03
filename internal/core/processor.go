// ABOUTME: Processor turns uploaded PDFs into a vector index and graph mentions
// ABOUTME: Extracts text, chunks it, builds the index, then writes chunk entities to the graph
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/docgraph/internal/graph"
	"github.com/harper/docgraph/internal/ingest"
	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/models"
	"github.com/harper/docgraph/internal/vectorindex"
)

var (
	// ErrGraphUnavailable means processing was refused because the graph is disconnected
	ErrGraphUnavailable = graph.ErrDisconnected
	// ErrNoText means the documents contained no extractable text
	ErrNoText = errors.New("no text could be extracted from the documents")
)

// ProgressFunc is called after each chunk is written to the graph
type ProgressFunc func(done, total int)

// Processor runs document processing
type Processor struct {
	splitter  *ingest.Splitter
	extractor EntityExtractor
	builder   vectorindex.Builder
}

// NewProcessor creates a Processor
func NewProcessor(splitter *ingest.Splitter, extractor EntityExtractor, builder vectorindex.Builder) *Processor {
	return &Processor{splitter: splitter, extractor: extractor, builder: builder}
}

// ProcessDocuments extracts text from docs and processes it
func (p *Processor) ProcessDocuments(ctx context.Context, docs []ingest.Document, g *graph.Conn, progress ProgressFunc) (vectorindex.Index, models.ProcessResult, error) {
	if !g.IsConnected() {
		return nil, models.ProcessResult{}, fmt.Errorf("%w: %v", ErrGraphUnavailable, g.Err())
	}

	text, stats, err := ingest.ExtractText(docs)
	if err != nil {
		return nil, models.ProcessResult{}, err
	}

	idx, result, err := p.ProcessText(ctx, text, g, progress)
	result.Documents = stats.Documents
	result.Pages = stats.Pages
	result.SkippedPages = stats.SkippedPages
	return idx, result, err
}

// ProcessText chunks already-extracted text, builds a fresh vector index
// and writes every chunk that has entities to the graph. A graph failure
// mid-way aborts and leaves the chunks written so far in place.
func (p *Processor) ProcessText(ctx context.Context, text string, g *graph.Conn, progress ProgressFunc) (vectorindex.Index, models.ProcessResult, error) {
	var result models.ProcessResult

	if !g.IsConnected() {
		return nil, result, fmt.Errorf("%w: %v", ErrGraphUnavailable, g.Err())
	}

	result.Characters = len([]rune(text))
	chunks, err := p.splitter.Split(text)
	if err != nil {
		return nil, result, err
	}
	if len(chunks) == 0 {
		return nil, result, ErrNoText
	}
	result.Chunks = len(chunks)

	idx, err := p.builder.Build(ctx, models.ChunkTexts(chunks))
	if err != nil {
		return nil, result, fmt.Errorf("failed to build vector index: %w", err)
	}
	log.Info("vector index built", "chunks", len(chunks))

	for i, chunk := range chunks {
		entities, err := p.extractor.Extract(chunk.Text)
		if err != nil {
			return nil, result, fmt.Errorf("failed to extract entities from chunk %d: %w", i, err)
		}

		if len(entities) > 0 {
			if err := g.AddChunkWithEntities(ctx, chunk.Text, entities); err != nil {
				return nil, result, fmt.Errorf("failed to store chunk %d: %w", i, err)
			}
			result.ChunksWithEntities++
			result.EntityMentions += len(entities)
		}

		if progress != nil {
			progress(i+1, len(chunks))
		}
	}

	log.Info("documents processed",
		"chunks", result.Chunks,
		"chunks_with_entities", result.ChunksWithEntities,
		"entity_mentions", result.EntityMentions)

	return idx, result, nil
}
