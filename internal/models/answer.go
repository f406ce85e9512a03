// ABOUTME: Answer and Evidence describe the output of one question
// ABOUTME: Evidence keeps the vector and graph context that fed the prompt
package models

import "strings"

// ContextSeparator joins retrieved chunks inside a context block
const ContextSeparator = "\n\n"

// Evidence is the retrieval output shown alongside an answer
type Evidence struct {
	VectorChunks []string `json:"vector_chunks"`
	GraphChunks  []string `json:"graph_chunks"`
	SearchTerms  []string `json:"search_terms"`
}

// VectorContext joins the vector chunks into one prompt block
func (e Evidence) VectorContext() string {
	return strings.Join(e.VectorChunks, ContextSeparator)
}

// GraphContext joins the graph chunks into one prompt block
func (e Evidence) GraphContext() string {
	return strings.Join(e.GraphChunks, ContextSeparator)
}

// Answer is the synthesized response to a question
type Answer struct {
	Question string   `json:"question"`
	Text     string   `json:"answer"`
	Evidence Evidence `json:"evidence"`
}

// ProcessResult summarizes one document processing run
type ProcessResult struct {
	Documents          int `json:"documents"`
	Pages              int `json:"pages"`
	SkippedPages       int `json:"skipped_pages"`
	Characters         int `json:"characters"`
	Chunks             int `json:"chunks"`
	ChunksWithEntities int `json:"chunks_with_entities"`
	EntityMentions     int `json:"entity_mentions"`
}
