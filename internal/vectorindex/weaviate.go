// ABOUTME: Weaviate-backed vector index using precomputed embeddings and nearVector search
// ABOUTME: Each build drops and recreates the index class so no stale chunks survive
package vectorindex

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/harper/docgraph/internal/log"
	docmodels "github.com/harper/docgraph/internal/models"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	textProperty     = "text"
	positionProperty = "position"
)

// WeaviateConfig describes how to reach Weaviate
type WeaviateConfig struct {
	Host   string
	Scheme string
}

// NewWeaviateClient connects a Weaviate client
func NewWeaviateClient(cfg WeaviateConfig) (*weaviate.Client, error) {
	client, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Weaviate client: %w", err)
	}
	return client, nil
}

// ClassName derives a valid Weaviate class name from an arbitrary key such
// as a session ID.
func ClassName(key string) string {
	var sb strings.Builder
	sb.WriteString("DocgraphChunks")
	for _, r := range key {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// WeaviateBuilder builds indexes stored in one Weaviate class
type WeaviateBuilder struct {
	client    *weaviate.Client
	embedder  Embedder
	className string
}

// NewWeaviateBuilder creates a builder writing to className
func NewWeaviateBuilder(client *weaviate.Client, embedder Embedder, className string) *WeaviateBuilder {
	return &WeaviateBuilder{client: client, embedder: embedder, className: className}
}

// Build replaces the class contents with the given chunks
func (b *WeaviateBuilder) Build(ctx context.Context, chunks []string) (Index, error) {
	vectors, err := b.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := b.resetClass(ctx); err != nil {
		return nil, err
	}

	if len(chunks) > 0 {
		objs := make([]*models.Object, len(chunks))
		for i, text := range chunks {
			objs[i] = &models.Object{
				Class: b.className,
				Properties: map[string]interface{}{
					textProperty:     text,
					positionProperty: i,
				},
				Vector: vectors[i],
			}
		}

		resp, err := b.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to batch add chunks: %w", err)
		}
		for _, r := range resp {
			if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				return nil, fmt.Errorf("failed to add chunk: %s", r.Result.Errors.Error[0].Message)
			}
		}
	}

	log.Debug("weaviate index built", "class", b.className, "chunks", len(chunks))
	return &WeaviateIndex{client: b.client, embedder: b.embedder, className: b.className, size: len(chunks)}, nil
}

// Drop deletes the builder's class if it exists
func (b *WeaviateBuilder) Drop(ctx context.Context) error {
	exists, err := b.classExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := b.client.Schema().ClassDeleter().WithClassName(b.className).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete Weaviate class: %w", err)
	}
	return nil
}

func (b *WeaviateBuilder) resetClass(ctx context.Context) error {
	if err := b.Drop(ctx); err != nil {
		return err
	}

	class := &models.Class{
		Class:      b.className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: textProperty, DataType: []string{"text"}},
			{Name: positionProperty, DataType: []string{"int"}},
		},
	}
	if err := b.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create Weaviate class: %w", err)
	}
	return nil
}

// classExists checks if the class exists in the schema
func (b *WeaviateBuilder) classExists(ctx context.Context) (bool, error) {
	schema, err := b.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == b.className {
			return true, nil
		}
	}
	return false, nil
}

// WeaviateIndex queries one Weaviate class
type WeaviateIndex struct {
	client    *weaviate.Client
	embedder  Embedder
	className string
	size      int
}

// Len implements Index
func (w *WeaviateIndex) Len() int {
	return w.size
}

// SimilaritySearch embeds query and runs a nearVector search.
// Similarity is reported as 1 - cosine distance.
func (w *WeaviateIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]docmodels.VectorSearchResult, error) {
	if k <= 0 || w.size == 0 {
		return nil, nil
	}

	vector, err := w.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	nearVector := w.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	result, err := w.client.GraphQL().Get().
		WithClassName(w.className).
		WithFields(
			graphql.Field{Name: textProperty},
			graphql.Field{Name: positionProperty},
			graphql.Field{Name: "_additional { distance }"},
		).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("failed to query vectors: %s", result.Errors[0].Message)
	}

	var out []docmodels.VectorSearchResult
	data, _ := result.Data["Get"].(map[string]interface{})
	objects, _ := data[w.className].([]interface{})
	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		text, _ := objMap[textProperty].(string)
		score := 0.0
		if additional, ok := objMap["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				score = 1 - d
			}
		}
		out = append(out, docmodels.VectorSearchResult{Text: text, SimilarityScore: score})
	}
	return out, nil
}
