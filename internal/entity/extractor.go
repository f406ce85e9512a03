// ABOUTME: Entity extraction from chunk and question text
// ABOUTME: Unions named entities with noun phrases, then drops short strings and stop words
package entity

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// MinLength is the shortest surface form kept, in characters
const MinLength = 3

// Token is one tagged word with its Penn Treebank part-of-speech tag
type Token struct {
	Text string
	Tag  string
}

// Analysis is the tagger output for one text
type Analysis struct {
	Tokens   []Token
	Entities []string
}

// Tagger tokenizes, tags and runs named-entity recognition over text
type Tagger interface {
	Analyze(text string) (Analysis, error)
}

// ProseTagger is the Tagger backed by prose's English models
type ProseTagger struct{}

var (
	modelOnce  sync.Once
	proseModel *prose.Model
	modelErr   error
	modelLoads int
)

// sharedModel loads prose's tagger and NER models once per process
func sharedModel() (*prose.Model, error) {
	modelOnce.Do(func() {
		modelLoads++
		doc, err := prose.NewDocument("")
		if err != nil {
			modelErr = fmt.Errorf("failed to load language model: %w", err)
			return
		}
		proseModel = doc.Model
	})
	return proseModel, modelErr
}

// Analyze implements Tagger
func (ProseTagger) Analyze(text string) (Analysis, error) {
	model, err := sharedModel()
	if err != nil {
		return Analysis{}, err
	}
	doc, err := prose.NewDocument(text, prose.UsingModel(model))
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to analyze text: %w", err)
	}

	var a Analysis
	for _, tok := range doc.Tokens() {
		a.Tokens = append(a.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	for _, ent := range doc.Entities() {
		a.Entities = append(a.Entities, ent.Text)
	}
	return a, nil
}

// Extractor turns text into the set of entity strings used as graph nodes
// and as graph search terms.
type Extractor struct {
	tagger Tagger
}

// NewExtractor creates an Extractor using prose
func NewExtractor() *Extractor {
	return &Extractor{tagger: ProseTagger{}}
}

// NewExtractorWithTagger creates an Extractor with a custom tagger
func NewExtractorWithTagger(tagger Tagger) *Extractor {
	return &Extractor{tagger: tagger}
}

// Extract returns the filtered, de-duplicated entities and noun phrases of
// text, sorted. Duplicates are detected case-insensitively and the first
// surface form seen is kept.
func (e *Extractor) Extract(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	a, err := e.tagger.Analyze(text)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(a.Entities))
	candidates = append(candidates, a.Entities...)
	candidates = append(candidates, NounPhrases(a.Tokens)...)

	return dedupe(Filter(candidates)), nil
}

// Filter drops strings of MinLength-1 characters or fewer and strings that
// are a single stop word. Surviving strings are whitespace-normalized.
func Filter(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.Join(strings.Fields(term), " ")
		if utf8.RuneCountInString(term) < MinLength {
			continue
		}
		if IsStopWord(term) {
			continue
		}
		out = append(out, term)
	}
	return out
}

// NounPhrases groups tagged tokens into base noun phrases: maximal runs of
// adjectives, numbers, nouns and possessive markers that end in a noun.
// Determiners and pronouns break a run and are never included.
func NounPhrases(tokens []Token) []string {
	var phrases []string
	var run []Token

	flush := func() {
		last := -1
		for i, tok := range run {
			if isNoun(tok.Tag) {
				last = i
			}
		}
		if last >= 0 {
			phrases = append(phrases, joinTokens(run[:last+1]))
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		switch {
		case isNoun(tok.Tag), isModifier(tok.Tag):
			run = append(run, tok)
		case tok.Tag == "POS" && len(run) > 0:
			run = append(run, tok)
		default:
			flush()
		}
	}
	flush()

	return phrases
}

func isNoun(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

func isModifier(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS", "CD":
		return true
	}
	return false
}

// joinTokens rebuilds phrase text, attaching possessive markers to the
// preceding word.
func joinTokens(tokens []Token) string {
	var sb strings.Builder
	for i, tok := range tokens {
		if i > 0 && tok.Tag != "POS" {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
