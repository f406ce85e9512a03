// ABOUTME: Tests for entity extraction, noun phrase grouping and filtering
// ABOUTME: Uses a fake tagger for phrase logic and prose for an end-to-end sentence
package entity

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeTagger struct {
	analysis Analysis
	err      error
}

func (f fakeTagger) Analyze(string) (Analysis, error) {
	return f.analysis, f.err
}

func tokens(pairs ...string) []Token {
	out := make([]Token, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Token{Text: pairs[i], Tag: pairs[i+1]})
	}
	return out
}

func TestNounPhrases(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		want   []string
	}{
		{
			name:   "determiner dropped",
			tokens: tokens("The", "DT", "Eiffel", "NNP", "Tower", "NNP", "is", "VBZ", "in", "IN", "Paris", "NNP", ".", "."),
			want:   []string{"Eiffel Tower", "Paris"},
		},
		{
			name:   "adjectives kept before noun",
			tokens: tokens("a", "DT", "large", "JJ", "graph", "NN", "database", "NN"),
			want:   []string{"large graph database"},
		},
		{
			name:   "trailing adjective trimmed",
			tokens: tokens("the", "DT", "results", "NNS", "were", "VBD", "good", "JJ"),
			want:   []string{"results"},
		},
		{
			name:   "possessive attached",
			tokens: tokens("France", "NNP", "'s", "POS", "capital", "NN"),
			want:   []string{"France's capital"},
		},
		{
			name:   "no nouns",
			tokens: tokens("it", "PRP", "ran", "VBD", "quickly", "RB"),
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NounPhrases(tt.tokens)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NounPhrases() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]string{"it", "The", "  Paris  ", "EU", "which", "Eiffel   Tower", "AI", "graph"})
	want := []string{"Paris", "Eiffel Tower", "graph"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestIsStopWord(t *testing.T) {
	for _, w := range []string{"the", "The", "WHICH", " about "} {
		if !IsStopWord(w) {
			t.Errorf("IsStopWord(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"Paris", "graph", "the tower"} {
		if IsStopWord(w) {
			t.Errorf("IsStopWord(%q) = true, want false", w)
		}
	}
}

func TestExtractor_UnionAndDedupe(t *testing.T) {
	tagger := fakeTagger{analysis: Analysis{
		Entities: []string{"Paris", "Eiffel Tower"},
		Tokens:   tokens("The", "DT", "Eiffel", "NNP", "Tower", "NNP", "is", "VBZ", "in", "IN", "paris", "NN", ".", "."),
	}}

	got, err := NewExtractorWithTagger(tagger).Extract("The Eiffel Tower is in Paris.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := []string{"Eiffel Tower", "Paris"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractor_EmptyText(t *testing.T) {
	tagger := fakeTagger{err: errors.New("should not be called")}
	got, err := NewExtractorWithTagger(tagger).Extract("   ")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Extract() = %v, want empty", got)
	}
}

func TestExtractor_TaggerError(t *testing.T) {
	tagger := fakeTagger{err: errors.New("boom")}
	if _, err := NewExtractorWithTagger(tagger).Extract("text"); err == nil {
		t.Error("Extract() expected tagger error")
	}
}

func TestExtractor_Prose(t *testing.T) {
	got, err := NewExtractor().Extract("The Eiffel Tower is in Paris.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	set := make(map[string]bool, len(got))
	for _, e := range got {
		set[e] = true
		if utf8.RuneCountInString(e) <= 2 {
			t.Errorf("entity %q is too short", e)
		}
		if IsStopWord(e) {
			t.Errorf("entity %q is a stop word", e)
		}
	}
	for _, want := range []string{"Eiffel Tower", "Paris"} {
		if !set[want] {
			t.Errorf("Extract() = %v, missing %q", got, want)
		}
	}
}

func TestExtractor_ProseQuestion(t *testing.T) {
	got, err := NewExtractor().Extract("What is the capital of France?")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	found := false
	for _, e := range got {
		if strings.EqualFold(e, "France") {
			found = true
		}
	}
	if !found {
		t.Errorf("Extract() = %v, want France among terms", got)
	}
}

func TestProseTagger_ModelLoadedOnce(t *testing.T) {
	tagger := ProseTagger{}
	for _, text := range []string{"Paris is the capital of France.", "Lisbon is in Portugal."} {
		a, err := tagger.Analyze(text)
		if err != nil {
			t.Fatalf("Analyze(%q) error: %v", text, err)
		}
		if len(a.Tokens) == 0 {
			t.Errorf("Analyze(%q) returned no tokens", text)
		}
	}
	if modelLoads != 1 {
		t.Errorf("model loaded %d times, want 1", modelLoads)
	}
	if proseModel == nil {
		t.Error("shared model not set")
	}
}
