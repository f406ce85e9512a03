// ABOUTME: Centralized configuration for docgraph commands and servers
// ABOUTME: Loads from environment variables (and .env) with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Vector index backends
const (
	VectorBackendMemory   = "memory"
	VectorBackendWeaviate = "weaviate"
)

// Config holds all configuration for docgraph
type Config struct {
	// OpenAI settings
	OpenAIKey          string
	OpenAIBaseURL      string
	ChatModel          string
	EmbeddingModel     string
	EmbeddingBatchSize int
	Temperature        float64

	// Neo4j settings
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Retrieval settings
	ChunkSize     int
	ChunkOverlap  int
	VectorTopK    int
	GraphLimit    int
	HistoryTurns  int
	VectorBackend string

	// Weaviate settings
	WeaviateHost   string
	WeaviateScheme string

	// Server settings
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Logging
	LogDevelopment bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		ChatModel:          getEnv("DOCGRAPH_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:     getEnv("DOCGRAPH_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingBatchSize: getEnvInt("DOCGRAPH_EMBEDDING_BATCH_SIZE", 100),
		Temperature:        getEnvFloat("DOCGRAPH_TEMPERATURE", 0.4),
		Neo4jURI:           getEnv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:      os.Getenv("NEO4J_PASSWORD"),
		Neo4jDatabase:      os.Getenv("NEO4J_DATABASE"),
		ChunkSize:          getEnvInt("DOCGRAPH_CHUNK_SIZE", 1000),
		ChunkOverlap:       getEnvInt("DOCGRAPH_CHUNK_OVERLAP", 200),
		VectorTopK:         getEnvInt("DOCGRAPH_VECTOR_TOP_K", 3),
		GraphLimit:         getEnvInt("DOCGRAPH_GRAPH_LIMIT", 5),
		HistoryTurns:       getEnvInt("DOCGRAPH_HISTORY_TURNS", 4),
		VectorBackend:      getEnv("DOCGRAPH_VECTOR_BACKEND", VectorBackendMemory),
		WeaviateHost:       getEnv("WEAVIATE_HOST", "localhost:8080"),
		WeaviateScheme:     getEnv("WEAVIATE_SCHEME", "http"),
		HTTPAddr:           getEnv("DOCGRAPH_HTTP_ADDR", ":8080"),
		ShutdownTimeout:    getEnvDuration("DOCGRAPH_SHUTDOWN_TIMEOUT", 5*time.Second),
		LogDevelopment:     getEnvBool("DOCGRAPH_LOG_DEVELOPMENT", false),
	}

	return cfg, cfg.Validate()
}

// LoadDotEnv loads a .env file into the environment if one exists.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("DOCGRAPH_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("DOCGRAPH_CHUNK_OVERLAP must be 0-%d, got %d", c.ChunkSize-1, c.ChunkOverlap)
	}
	if c.VectorTopK <= 0 {
		return fmt.Errorf("DOCGRAPH_VECTOR_TOP_K must be positive, got %d", c.VectorTopK)
	}
	if c.GraphLimit <= 0 {
		return fmt.Errorf("DOCGRAPH_GRAPH_LIMIT must be positive, got %d", c.GraphLimit)
	}
	if c.HistoryTurns <= 0 {
		return fmt.Errorf("DOCGRAPH_HISTORY_TURNS must be positive, got %d", c.HistoryTurns)
	}
	if c.EmbeddingBatchSize <= 0 || c.EmbeddingBatchSize > 2048 {
		return fmt.Errorf("DOCGRAPH_EMBEDDING_BATCH_SIZE must be 1-2048, got %d", c.EmbeddingBatchSize)
	}
	// the OpenAI client omits a zero temperature, which the API treats as 1.0
	if c.Temperature <= 0 || c.Temperature > 2 {
		return fmt.Errorf("DOCGRAPH_TEMPERATURE must be above 0 and at most 2, got %f", c.Temperature)
	}
	switch c.VectorBackend {
	case VectorBackendMemory, VectorBackendWeaviate:
	default:
		return fmt.Errorf("DOCGRAPH_VECTOR_BACKEND must be %q or %q, got %q",
			VectorBackendMemory, VectorBackendWeaviate, c.VectorBackend)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
