// ABOUTME: Tests for PDF text extraction, normalization and chunking
// ABOUTME: Builds small PDFs in memory so extraction runs against real parser output
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/harper/docgraph/internal/models"
)

// buildPDF writes a minimal single-font PDF with one text line per page.
// An empty string produces a page with an empty content stream.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	total := 3 + 2*len(pages)
	offsets := make([]int, total+1)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		pageNum := 4 + 2*i
		contentNum := pageNum + 1
		writeObj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentNum))

		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		offsets[contentNum] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentNum, len(stream), stream)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello   world", "hello world"},
		{"  leading and trailing \n", "leading and trailing"},
		{"tabs\tand\nnewlines\r\nmixed", "tabs and newlines mixed"},
		{"", ""},
		{" \t\n ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractText_PagesConcatenated(t *testing.T) {
	doc := Document{Name: "a.pdf", Data: buildPDF("Hello   World", "", "Second page")}

	text, stats, err := ExtractText([]Document{doc})
	if err != nil {
		t.Fatalf("ExtractText() error: %v", err)
	}

	if text != "Hello WorldSecond page" {
		t.Errorf("text = %q, want %q", text, "Hello WorldSecond page")
	}
	if stats.Pages != 3 {
		t.Errorf("Pages = %d, want 3", stats.Pages)
	}
	if stats.SkippedPages != 1 {
		t.Errorf("SkippedPages = %d, want 1", stats.SkippedPages)
	}
	if stats.Characters != len(text) {
		t.Errorf("Characters = %d, want %d", stats.Characters, len(text))
	}
}

func TestExtractText_MultipleDocuments(t *testing.T) {
	docs := []Document{
		{Name: "one.pdf", Data: buildPDF("Paris is the capital of France.")},
		{Name: "two.pdf", Data: buildPDF("Berlin is the capital of Germany.")},
	}

	text, stats, err := ExtractText(docs)
	if err != nil {
		t.Fatalf("ExtractText() error: %v", err)
	}
	want := "Paris is the capital of France.Berlin is the capital of Germany."
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
	if stats.Documents != 2 {
		t.Errorf("Documents = %d, want 2", stats.Documents)
	}
}

func TestExtractText_NotAPDF(t *testing.T) {
	_, _, err := ExtractText([]Document{{Name: "notes.txt", Data: []byte("just some text")}})
	if err == nil {
		t.Fatal("ExtractText() expected error for non-PDF input")
	}
	if !errors.Is(err, ErrInvalidPDF) {
		t.Errorf("error = %v, want ErrInvalidPDF", err)
	}
	if !strings.Contains(err.Error(), "notes.txt") {
		t.Errorf("error %q should name the document", err.Error())
	}
}

func TestReadDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(path, buildPDF("content"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	docs, err := ReadDocuments([]string{path})
	if err != nil {
		t.Fatalf("ReadDocuments() error: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "doc.pdf" {
		t.Errorf("docs = %+v", docs)
	}

	if _, err := ReadDocuments([]string{filepath.Join(dir, "missing.pdf")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadFrom(t *testing.T) {
	doc, err := ReadFrom("upload.pdf", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("ReadFrom() error: %v", err)
	}
	if doc.Name != "upload.pdf" || string(doc.Data) != "data" {
		t.Errorf("doc = %+v", doc)
	}
}

// distinctWords returns n fixed-width words so every word occurs once
func distinctWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%05d", i)
	}
	return strings.Join(words, " ")
}

func TestSplitter_ChunkBoundsAndOverlap(t *testing.T) {
	text := distinctWords(1500) // ~10k characters
	chunks, err := DefaultSplitter().Split(text)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if n := utf8.RuneCountInString(c.Text); n > DefaultChunkSize {
			t.Errorf("chunk %d has %d characters, want <= %d", i, n, DefaultChunkSize)
		}
	}

	for i := 0; i+1 < len(chunks); i++ {
		cur, next := chunks[i].Text, chunks[i+1].Text
		firstWord := strings.Fields(next)[0]
		idx := strings.LastIndex(cur, firstWord)
		if idx < 0 {
			t.Errorf("chunks %d and %d do not overlap", i, i+1)
			continue
		}
		shared := cur[idx:]
		if !strings.HasPrefix(next, shared) {
			t.Errorf("chunk %d suffix %q is not a prefix of chunk %d", i, shared, i+1)
		}
		if len(shared) > DefaultChunkOverlap {
			t.Errorf("overlap between %d and %d is %d characters, want <= %d", i, i+1, len(shared), DefaultChunkOverlap)
		}
	}
}

// reassemble joins chunks, dropping from each the longest prefix (up to
// overlap characters) that repeats the end of the previous chunk
func reassemble(chunks []models.Chunk, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(chunks[0].Text)
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1].Text, chunks[i].Text
		k := min(overlap, len(prev), len(cur))
		for k > 0 && !strings.HasSuffix(prev, cur[:k]) {
			k--
		}
		b.WriteString(cur[k:])
	}
	return b.String()
}

func TestSplitter_ReassemblesNormalizedText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"words", strings.ReplaceAll(distinctWords(1500), "w00100 ", "w00100\n\t  ")},
		{"no spaces", strings.Repeat("x", 2500)},
		{"short", "Paris   is the capital\nof France."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalized := Normalize(tt.text)
			chunks, err := DefaultSplitter().Split(normalized)
			if err != nil {
				t.Fatalf("Split() error: %v", err)
			}
			for i, c := range chunks {
				if n := utf8.RuneCountInString(c.Text); n > DefaultChunkSize {
					t.Errorf("chunk %d has %d characters", i, n)
				}
			}
			if got := reassemble(chunks, DefaultChunkOverlap); got != normalized {
				t.Errorf("reassembled %d characters, want %d", len(got), len(normalized))
			}
		})
	}
}

func TestSplitter_HardCutFallback(t *testing.T) {
	chunks, err := DefaultSplitter().Split(strings.Repeat("x", 2500))
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	want := []int{1000, 1000, 900}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, c := range chunks {
		if len(c.Text) != want[i] {
			t.Errorf("chunk %d has %d characters, want %d", i, len(c.Text), want[i])
		}
	}
}

func TestSplitter_ShortText(t *testing.T) {
	chunks, err := DefaultSplitter().Split("Paris is the capital of France.")
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "Paris is the capital of France." {
		t.Errorf("chunks = %+v", chunks)
	}
}

func TestSplitter_EmptyText(t *testing.T) {
	chunks, err := DefaultSplitter().Split("   ")
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestNewSplitter_Validation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", 1000, 200, false},
		{"no overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"overlap too large", 100, 100, true},
		{"negative overlap", 100, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSplitter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
