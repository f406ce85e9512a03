// ABOUTME: Session owns one conversation: credentials, graph connection, vector index and chat turns
// ABOUTME: Calls on a session are serialized; the index is replaced on every successful processing run
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harper/docgraph/internal/core"
	"github.com/harper/docgraph/internal/graph"
	"github.com/harper/docgraph/internal/ingest"
	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/models"
	"github.com/harper/docgraph/internal/vectorindex"
)

var (
	// ErrMissingCredentials is returned when required credentials are empty
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrNoDocuments is returned when processing is requested with no documents
	ErrNoDocuments = errors.New("no documents provided")
	// ErrNotProcessed is returned when a question arrives before any documents were processed
	ErrNotProcessed = errors.New("documents have not been processed")
	// ErrEmptyQuestion is returned for blank questions
	ErrEmptyQuestion = errors.New("question cannot be empty")
	// ErrClosed is returned by operations on a closed session
	ErrClosed = errors.New("session is closed")
)

// DefaultHistoryTurns is how many trailing turns reach the answer prompt
const DefaultHistoryTurns = 4

// Credentials are the per-session secrets and endpoints
type Credentials struct {
	OpenAIKey     string `json:"openai_api_key,omitempty"`
	Neo4jURI      string `json:"neo4j_uri,omitempty"`
	Neo4jUser     string `json:"neo4j_user,omitempty"`
	Neo4jPassword string `json:"neo4j_password,omitempty"`
	Neo4jDatabase string `json:"neo4j_database,omitempty"`
}

// Merge fills empty fields of c from defaults
func (c Credentials) Merge(defaults Credentials) Credentials {
	pick := func(v, d string) string {
		if v != "" {
			return v
		}
		return d
	}
	return Credentials{
		OpenAIKey:     pick(c.OpenAIKey, defaults.OpenAIKey),
		Neo4jURI:      pick(c.Neo4jURI, defaults.Neo4jURI),
		Neo4jUser:     pick(c.Neo4jUser, defaults.Neo4jUser),
		Neo4jPassword: pick(c.Neo4jPassword, defaults.Neo4jPassword),
		Neo4jDatabase: pick(c.Neo4jDatabase, defaults.Neo4jDatabase),
	}
}

// Missing lists the names of empty required fields
func (c Credentials) Missing(graphRequired bool) []string {
	var missing []string
	if c.OpenAIKey == "" {
		missing = append(missing, "OpenAI API key")
	}
	if graphRequired {
		if c.Neo4jURI == "" {
			missing = append(missing, "Neo4j URI")
		}
		if c.Neo4jUser == "" {
			missing = append(missing, "Neo4j username")
		}
		if c.Neo4jPassword == "" {
			missing = append(missing, "Neo4j password")
		}
	}
	return missing
}

// Services are the pipeline stages a session drives
type Services struct {
	Processor   *core.Processor
	Retriever   *core.Retriever
	Synthesizer *core.Synthesizer
	// Cleanup releases per-session external resources; may be nil
	Cleanup func(ctx context.Context) error
}

// Dependencies create a session's collaborators from its credentials
type Dependencies struct {
	// ConnectGraph must not fail; an unreachable graph yields a disconnected conn
	ConnectGraph func(ctx context.Context, creds Credentials) *graph.Conn
	// NewServices builds the pipeline for one session
	NewServices func(creds Credentials, sessionID string) (*Services, error)
	// GraphCredentialsRequired makes Neo4j credentials mandatory
	GraphCredentialsRequired bool
	// HistoryTurns overrides DefaultHistoryTurns when positive
	HistoryTurns int
}

// Session is one user's conversation over a set of processed documents
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	creds      Credentials
	deps       Dependencies
	conn       *graph.Conn
	services   *Services
	index      vectorindex.Index
	lastResult *models.ProcessResult
	transcript []models.Turn
	history    []models.Turn
	closed     bool
}

// New creates a session
func New(id string, creds Credentials, deps Dependencies) *Session {
	if deps.HistoryTurns <= 0 {
		deps.HistoryTurns = DefaultHistoryTurns
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		creds:     creds,
		deps:      deps,
	}
}

// ensureReady validates credentials, (re)connects the graph if needed and
// builds services once.
func (s *Session) ensureReady(ctx context.Context) error {
	if missing := s.creds.Missing(s.deps.GraphCredentialsRequired); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if s.conn == nil || !s.conn.IsConnected() {
		s.conn = s.deps.ConnectGraph(ctx, s.creds)
	}

	if s.services == nil {
		services, err := s.deps.NewServices(s.creds, s.ID)
		if err != nil {
			return err
		}
		s.services = services
	}
	return nil
}

// CheckGraph runs the graph pre-flight check
func (s *Session) CheckGraph(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.conn == nil || !s.conn.IsConnected() {
		s.conn = s.deps.ConnectGraph(ctx, s.creds)
	}
	return s.conn.Ping(ctx)
}

// Process ingests PDFs, replacing the session's vector index on success
func (s *Session) Process(ctx context.Context, docs []ingest.Document, progress core.ProgressFunc) (models.ProcessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.ProcessResult{}, ErrClosed
	}
	if len(docs) == 0 {
		return models.ProcessResult{}, ErrNoDocuments
	}
	if err := s.ensureReady(ctx); err != nil {
		return models.ProcessResult{}, err
	}

	idx, result, err := s.services.Processor.ProcessDocuments(ctx, docs, s.conn, progress)
	if err != nil {
		return result, err
	}
	s.commit(idx, result)
	return result, nil
}

// ProcessText ingests already-extracted text
func (s *Session) ProcessText(ctx context.Context, text string, progress core.ProgressFunc) (models.ProcessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.ProcessResult{}, ErrClosed
	}
	if err := s.ensureReady(ctx); err != nil {
		return models.ProcessResult{}, err
	}

	idx, result, err := s.services.Processor.ProcessText(ctx, text, s.conn, progress)
	if err != nil {
		return result, err
	}
	s.commit(idx, result)
	return result, nil
}

func (s *Session) commit(idx vectorindex.Index, result models.ProcessResult) {
	s.index = idx
	s.lastResult = &result
	log.Info("session documents processed", "session", s.ID, "chunks", result.Chunks, "entity_mentions", result.EntityMentions)
}

// Ask answers a question against the processed documents. The question is
// recorded in the transcript even when it cannot be answered.
func (s *Session) Ask(ctx context.Context, question string) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	userTurn, err := models.NewTurn(models.RoleUser, question)
	if err != nil {
		return nil, ErrEmptyQuestion
	}
	s.transcript = append(s.transcript, *userTurn)

	if s.index == nil {
		return nil, ErrNotProcessed
	}

	recent := models.RecentTurns(s.history, s.deps.HistoryTurns)
	fc, err := s.services.Retriever.Retrieve(ctx, question, s.index, s.conn, recent)
	if err != nil {
		return nil, err
	}

	text, err := s.services.Synthesizer.Answer(ctx, fc)
	if err != nil {
		return nil, err
	}

	assistantTurn, err := models.NewTurn(models.RoleAssistant, text)
	if err != nil {
		return nil, err
	}
	s.transcript = append(s.transcript, *assistantTurn)
	s.history = append(s.history, *userTurn, *assistantTurn)

	return &models.Answer{Question: question, Text: text, Evidence: fc.Evidence}, nil
}

// Transcript returns a copy of every turn shown to the user
func (s *Session) Transcript() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// History returns a copy of the completed question/answer turns
func (s *Session) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Processed reports whether an index is available, with the last run's summary
func (s *Session) Processed() (bool, *models.ProcessResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index != nil, s.lastResult
}

// GraphState reports the current graph connection state
func (s *Session) GraphState() graph.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return graph.Disconnected
	}
	return s.conn.State()
}

// Close ends the session, releasing the graph connection and any external index
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.index = nil

	var errs []error
	if s.services != nil && s.services.Cleanup != nil {
		if err := s.services.Cleanup(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
