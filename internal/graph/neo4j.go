// ABOUTME: Neo4j graph store using Cypher MERGE for idempotent writes
// ABOUTME: Ranks chunks for search terms by distinct matched entities, then by length
package graph

import (
	"context"
	"fmt"

	"github.com/harper/docgraph/internal/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	mergeChunkQuery = `
MERGE (c:Chunk {text: $text})
WITH c
UNWIND $entities AS name
MERGE (e:Entity {name: name})
MERGE (c)-[:MENTIONS]->(e)`

	chunksForTermsQuery = `
UNWIND $terms AS term
MATCH (e:Entity)
WHERE toLower(e.name) CONTAINS toLower(term) OR toLower(term) CONTAINS toLower(e.name)
MATCH (c:Chunk)-[:MENTIONS]->(e)
WITH c, count(DISTINCT e) AS score
RETURN c.text AS text, score
ORDER BY score DESC, size(c.text) ASC
LIMIT $limit`

	statsQuery = `
CALL { MATCH (c:Chunk) RETURN count(c) AS chunks }
CALL { MATCH (e:Entity) RETURN count(e) AS entities }
CALL { MATCH (:Chunk)-[m:MENTIONS]->(:Entity) RETURN count(m) AS mentions }
RETURN chunks, entities, mentions`
)

var schemaQueries = []string{
	"CREATE CONSTRAINT docgraph_entity_name IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE",
	"CREATE CONSTRAINT docgraph_chunk_text IF NOT EXISTS FOR (c:Chunk) REQUIRE c.text IS UNIQUE",
}

// Neo4jConfig holds connection settings
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// Neo4jStore is a Store backed by a Neo4j driver
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// OpenNeo4j creates a driver and verifies the database is reachable
func OpenNeo4j(ctx context.Context, cfg Neo4jConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
	}
	return &Neo4jStore{driver: driver, database: cfg.Database}, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

// EnsureSchema creates uniqueness constraints if they are missing
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer func() { _ = session.Close(ctx) }()

	for _, q := range schemaQueries {
		result, err := session.Run(ctx, q, nil)
		if err == nil {
			_, err = result.Consume(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to apply %q: %w", q, err)
		}
	}
	return nil
}

// AddChunkWithEntities implements Store
func (s *Neo4jStore) AddChunkWithEntities(ctx context.Context, chunkText string, entities []string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer func() { _ = session.Close(ctx) }()

	names := make([]any, len(entities))
	for i, e := range entities {
		names[i] = e
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, mergeChunkQuery, map[string]any{
			"text":     chunkText,
			"entities": names,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to store chunk: %w", err)
	}

	log.Debug("stored chunk in graph", "entities", len(entities))
	return nil
}

// ChunksForTerms implements Store
func (s *Neo4jStore) ChunksForTerms(ctx context.Context, terms []string, limit int) ([]string, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer func() { _ = session.Close(ctx) }()

	params := make([]any, len(terms))
	for i, t := range terms {
		params[i] = t
	}

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, chunksForTermsQuery, map[string]any{
			"terms": params,
			"limit": int64(limit),
		})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		texts := make([]string, 0, len(records))
		for _, record := range records {
			v, ok := record.Get("text")
			if !ok {
				continue
			}
			if text, ok := v.(string); ok {
				texts = append(texts, text)
			}
		}
		return texts, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query graph context: %w", err)
	}
	return out.([]string), nil
}

// Stats implements Store
func (s *Neo4jStore) Stats(ctx context.Context) (Stats, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer func() { _ = session.Close(ctx) }()

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, statsQuery, nil)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		var st Stats
		if v, ok := record.Get("chunks"); ok {
			st.Chunks, _ = v.(int64)
		}
		if v, ok := record.Get("entities"); ok {
			st.Entities, _ = v.(int64)
		}
		if v, ok := record.Get("mentions"); ok {
			st.Mentions, _ = v.(int64)
		}
		return st, nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read graph stats: %w", err)
	}
	return out.(Stats), nil
}

// Ping implements Store
func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close implements Store
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
