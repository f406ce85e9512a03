// ABOUTME: Builds production session dependencies from configuration
// ABOUTME: Chooses Neo4j or the in-memory graph and the memory or Weaviate vector backend
package session

import (
	"context"
	"fmt"

	"github.com/harper/docgraph/internal/config"
	"github.com/harper/docgraph/internal/core"
	"github.com/harper/docgraph/internal/entity"
	"github.com/harper/docgraph/internal/graph"
	"github.com/harper/docgraph/internal/ingest"
	"github.com/harper/docgraph/internal/llm"
	"github.com/harper/docgraph/internal/vectorindex"
	openai "github.com/sashabaranov/go-openai"
)

// FactoryOptions tweak DependenciesFromConfig
type FactoryOptions struct {
	// MemoryGraph keeps the knowledge graph in process instead of Neo4j
	MemoryGraph bool
}

// DefaultCredentials reads credentials from configuration
func DefaultCredentials(cfg *config.Config) Credentials {
	return Credentials{
		OpenAIKey:     cfg.OpenAIKey,
		Neo4jURI:      cfg.Neo4jURI,
		Neo4jUser:     cfg.Neo4jUser,
		Neo4jPassword: cfg.Neo4jPassword,
		Neo4jDatabase: cfg.Neo4jDatabase,
	}
}

// DependenciesFromConfig wires real clients for sessions
func DependenciesFromConfig(cfg *config.Config, opts FactoryOptions) Dependencies {
	graphOpts := []graph.Option{graph.WithContextLimit(cfg.GraphLimit)}

	var connect func(ctx context.Context, creds Credentials) *graph.Conn
	if opts.MemoryGraph {
		shared := graph.NewMemoryStore()
		connect = func(context.Context, Credentials) *graph.Conn {
			return graph.NewConnected(shared, graphOpts...)
		}
	} else {
		connect = func(ctx context.Context, creds Credentials) *graph.Conn {
			return graph.Connect(ctx, graph.Neo4jConfig{
				URI:      creds.Neo4jURI,
				Username: creds.Neo4jUser,
				Password: creds.Neo4jPassword,
				Database: creds.Neo4jDatabase,
			}, graphOpts...)
		}
	}

	// The extractor is stateless and shared by every session
	extractor := entity.NewExtractor()

	newServices := func(creds Credentials, sessionID string) (*Services, error) {
		client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:             creds.OpenAIKey,
			BaseURL:            cfg.OpenAIBaseURL,
			ChatModel:          cfg.ChatModel,
			EmbeddingModel:     openai.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingBatchSize: cfg.EmbeddingBatchSize,
			Temperature:        float32(cfg.Temperature),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
		}

		splitter, err := ingest.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
		if err != nil {
			return nil, err
		}

		services := &Services{
			Retriever:   core.NewRetriever(extractor, cfg.VectorTopK),
			Synthesizer: core.NewSynthesizer(client),
		}

		var builder vectorindex.Builder
		switch cfg.VectorBackend {
		case config.VectorBackendWeaviate:
			wc, err := vectorindex.NewWeaviateClient(vectorindex.WeaviateConfig{
				Host:   cfg.WeaviateHost,
				Scheme: cfg.WeaviateScheme,
			})
			if err != nil {
				return nil, err
			}
			wb := vectorindex.NewWeaviateBuilder(wc, client, vectorindex.ClassName(sessionID))
			builder = wb
			services.Cleanup = wb.Drop
		default:
			builder = vectorindex.NewMemoryBuilder(client)
		}

		services.Processor = core.NewProcessor(splitter, extractor, builder)
		return services, nil
	}

	return Dependencies{
		ConnectGraph:             connect,
		NewServices:              newServices,
		GraphCredentialsRequired: !opts.MemoryGraph,
		HistoryTurns:             cfg.HistoryTurns,
	}
}
