// ABOUTME: PDF text extraction for uploaded documents
// ABOUTME: Pulls plain text page by page, normalizing whitespace and skipping unreadable pages
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/docgraph/internal/log"
	"github.com/ledongthuc/pdf"
)

// ErrInvalidPDF is returned when a document cannot be parsed as a PDF
var ErrInvalidPDF = errors.New("invalid PDF")

// Document is one uploaded PDF held in memory
type Document struct {
	Name string
	Data []byte
}

// Stats reports what ExtractText saw
type Stats struct {
	Documents    int
	Pages        int
	SkippedPages int
	Characters   int
}

// ReadDocument loads a PDF from disk
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Document{Name: filepath.Base(path), Data: data}, nil
}

// ReadDocuments loads every path in order
func ReadDocuments(paths []string) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		doc, err := ReadDocument(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadFrom buffers an upload stream into a Document
func ReadFrom(name string, r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return Document{Name: name, Data: data}, nil
}

// ExtractText concatenates the normalized text of every page of every
// document, in order, with no separator between pages.
func ExtractText(docs []Document) (string, Stats, error) {
	var sb strings.Builder
	stats := Stats{Documents: len(docs)}

	for _, doc := range docs {
		reader, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
		if err != nil {
			return "", stats, fmt.Errorf("%w %s: %v", ErrInvalidPDF, doc.Name, err)
		}

		pageCount := reader.NumPage()
		for i := 1; i <= pageCount; i++ {
			stats.Pages++
			text := pageText(reader, i)
			if text == "" {
				stats.SkippedPages++
				log.Debug("skipping page without text", "document", doc.Name, "page", i)
				continue
			}
			sb.WriteString(text)
		}
	}

	out := sb.String()
	stats.Characters = len([]rune(out))
	return out, stats, nil
}

// pageText returns the normalized text of one page, or "" when the page
// has no text or cannot be decoded.
func pageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("page extraction panicked", "page", num, "panic", fmt.Sprint(r))
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	raw, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return Normalize(raw)
}

// Normalize collapses every whitespace run to a single space and trims the ends
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
