// ABOUTME: Knowledge graph connection with explicit connected/disconnected state
// ABOUTME: A disconnected graph turns every operation into a no-op with an empty result
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/docgraph/internal/log"
)

// DefaultContextLimit caps how many chunks ContextForTerms returns
const DefaultContextLimit = 5

// ErrDisconnected is reported by Ping when the graph could not be reached
var ErrDisconnected = errors.New("graph database is not connected")

// Store is a graph backend holding Chunk and Entity nodes linked by MENTIONS edges
type Store interface {
	// AddChunkWithEntities merges the chunk, every entity and every
	// chunk-entity edge in one write transaction.
	AddChunkWithEntities(ctx context.Context, chunkText string, entities []string) error
	// ChunksForTerms ranks chunks by how many distinct entities they mention
	// that contain, or are contained in, any term (case-insensitive). Ties
	// go to the shorter chunk.
	ChunksForTerms(ctx context.Context, terms []string, limit int) ([]string, error)
	// Stats counts nodes and edges
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Stats summarizes graph contents
type Stats struct {
	Chunks   int64 `json:"chunks"`
	Entities int64 `json:"entities"`
	Mentions int64 `json:"mentions"`
}

// State is the connection state of a Conn
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Conn wraps a Store with the soft-fail policy: when the backend could not
// be reached, writes are dropped and lookups return nothing.
type Conn struct {
	state State
	store Store
	err   error
	limit int
}

// Option configures a Conn
type Option func(*Conn)

// WithContextLimit overrides DefaultContextLimit
func WithContextLimit(n int) Option {
	return func(c *Conn) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewConnected wraps a reachable store
func NewConnected(store Store, opts ...Option) *Conn {
	c := &Conn{state: Connected, store: store, limit: DefaultContextLimit}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDisconnected records why the graph is unavailable
func NewDisconnected(err error, opts ...Option) *Conn {
	if err == nil {
		err = ErrDisconnected
	}
	c := &Conn{state: Disconnected, err: err, limit: DefaultContextLimit}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens Neo4j and verifies connectivity. It never fails: an
// unreachable database yields a Disconnected conn carrying the cause.
func Connect(ctx context.Context, cfg Neo4jConfig, opts ...Option) *Conn {
	store, err := OpenNeo4j(ctx, cfg)
	if err != nil {
		log.Error(err, "graph database unavailable, continuing without graph", "uri", cfg.URI)
		return NewDisconnected(err, opts...)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Error(err, "failed to create graph constraints", "uri", cfg.URI)
	}
	log.Info("connected to graph database", "uri", cfg.URI)
	return NewConnected(store, opts...)
}

// State reports the connection state
func (c *Conn) State() State {
	return c.state
}

// IsConnected reports whether the conn has a live backend
func (c *Conn) IsConnected() bool {
	return c.state == Connected
}

// Err returns the connection failure for a disconnected conn
func (c *Conn) Err() error {
	return c.err
}

// Ping is the explicit pre-flight connectivity check
func (c *Conn) Ping(ctx context.Context) error {
	if c.state == Disconnected {
		return fmt.Errorf("%w: %v", ErrDisconnected, c.err)
	}
	return c.store.Ping(ctx)
}

// AddChunkWithEntities stores a chunk and its mentions
func (c *Conn) AddChunkWithEntities(ctx context.Context, chunkText string, entities []string) error {
	if c.state == Disconnected {
		return nil
	}
	return c.store.AddChunkWithEntities(ctx, chunkText, entities)
}

// ContextForTerms returns up to the context limit of chunks related to terms.
// An empty term list returns nothing without querying.
func (c *Conn) ContextForTerms(ctx context.Context, terms []string) ([]string, error) {
	if c.state == Disconnected {
		return []string{}, nil
	}

	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return []string{}, nil
	}
	return c.store.ChunksForTerms(ctx, cleaned, c.limit)
}

// Stats returns node and edge counts, zero when disconnected
func (c *Conn) Stats(ctx context.Context) (Stats, error) {
	if c.state == Disconnected {
		return Stats{}, nil
	}
	return c.store.Stats(ctx)
}

// Close releases the backend
func (c *Conn) Close(ctx context.Context) error {
	if c.state == Disconnected {
		return nil
	}
	return c.store.Close(ctx)
}
