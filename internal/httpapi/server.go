// ABOUTME: HTTP transport for docgraph sessions built on gin
// ABOUTME: Wires routes, request logging and graceful shutdown around a session manager
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/session"
)

// MaxUploadBytes caps the in-memory part of a multipart upload
const MaxUploadBytes = 64 << 20

// Server serves the session API
type Server struct {
	engine   *gin.Engine
	server   *http.Server
	sessions *session.Manager
}

// NewServer creates a Server listening on addr
func NewServer(addr string, sessions *session.Manager) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.MaxMultipartMemory = MaxUploadBytes
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{
		engine:   engine,
		sessions: sessions,
		server: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	h := &handlers{sessions: s.sessions}

	api := s.engine.Group("/api/v1")
	api.GET("/health", h.health)

	sessions := api.Group("/sessions")
	sessions.POST("", h.createSession)
	sessions.DELETE("/:id", h.deleteSession)
	sessions.POST("/:id/documents", h.processDocuments)
	sessions.POST("/:id/chat", h.chat)
	sessions.GET("/:id/messages", h.messages)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down within timeout
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("shutting down http server")
	err := s.server.Shutdown(shutdownCtx)
	s.sessions.CloseAll(shutdownCtx)
	return err
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String())
	}
}
