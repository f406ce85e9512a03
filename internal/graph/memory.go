// ABOUTME: In-memory graph store with the same merge and ranking rules as Neo4j
// ABOUTME: Used when running without a database and throughout the tests
package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// MemoryStore keeps chunks, entities and mentions in maps keyed by their text
type MemoryStore struct {
	mu       sync.RWMutex
	chunks   []string // insertion order
	chunkSet map[string]bool
	entities map[string]bool
	mentions map[string]map[string]bool // chunk text -> entity names
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunkSet: make(map[string]bool),
		entities: make(map[string]bool),
		mentions: make(map[string]map[string]bool),
	}
}

// AddChunkWithEntities implements Store
func (m *MemoryStore) AddChunkWithEntities(_ context.Context, chunkText string, entities []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.chunkSet[chunkText] {
		m.chunkSet[chunkText] = true
		m.chunks = append(m.chunks, chunkText)
		m.mentions[chunkText] = make(map[string]bool)
	}
	for _, name := range entities {
		m.entities[name] = true
		m.mentions[chunkText][name] = true
	}
	return nil
}

// ChunksForTerms implements Store
func (m *MemoryStore) ChunksForTerms(_ context.Context, terms []string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}

	type scored struct {
		text  string
		score int
	}
	var hits []scored
	for _, chunk := range m.chunks {
		score := 0
		for name := range m.mentions[chunk] {
			if matchesAny(strings.ToLower(name), lowered) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{text: chunk, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return utf8.RuneCountInString(hits[i].text) < utf8.RuneCountInString(hits[j].text)
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.text
	}
	return out, nil
}

// matchesAny applies the two-way containment rule
func matchesAny(name string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(name, t) || strings.Contains(t, name) {
			return true
		}
	}
	return false
}

// Stats implements Store
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var mentions int64
	for _, names := range m.mentions {
		mentions += int64(len(names))
	}
	return Stats{
		Chunks:   int64(len(m.chunks)),
		Entities: int64(len(m.entities)),
		Mentions: mentions,
	}, nil
}

// Ping implements Store
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store
func (m *MemoryStore) Close(context.Context) error { return nil }
