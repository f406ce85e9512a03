// ABOUTME: Chunk is a normalized span of document text
// ABOUTME: Chunks are identified by their exact text in the graph and vector index
package models

// Chunk represents a piece of document text produced by the splitter
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ChunkTexts returns the text of every chunk in order
func ChunkTexts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
