// ABOUTME: Request handlers for the session API
// ABOUTME: Maps session and pipeline errors onto HTTP status codes with a {code, message} body
package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harper/docgraph/internal/core"
	"github.com/harper/docgraph/internal/ingest"
	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/models"
	"github.com/harper/docgraph/internal/session"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionResponse describes a session
type SessionResponse struct {
	ID         string                `json:"id"`
	GraphState string                `json:"graph_state"`
	Processed  bool                  `json:"processed"`
	Result     *models.ProcessResult `json:"result,omitempty"`
}

// ChatRequest is the body of POST /sessions/:id/chat
type ChatRequest struct {
	Question string `json:"question"`
}

// MessagesResponse is the body of GET /sessions/:id/messages
type MessagesResponse struct {
	Messages []models.Turn `json:"messages"`
}

type handlers struct {
	sessions *session.Manager
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *handlers) createSession(c *gin.Context) {
	var creds session.Credentials
	// The body is optional; omitted credentials fall back to the server's
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&creds); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}

	s := h.sessions.Create(creds)
	c.JSON(http.StatusCreated, describe(s))
}

func (h *handlers) deleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			fail(c, err)
			return
		}
		// The session is gone either way; cleanup problems are only logged
		log.Error(err, "session cleanup failed", "session", c.Param("id"))
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) processDocuments(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "expected multipart form with files")
		return
	}

	docs := make([]ingest.Document, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request", fmt.Sprintf("failed to open %s: %v", fh.Filename, err))
			return
		}
		doc, err := ingest.ReadFrom(fh.Filename, f)
		f.Close()
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		docs = append(docs, doc)
	}

	if _, err := s.Process(c.Request.Context(), docs, nil); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, describe(s))
}

func (h *handlers) chat(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	answer, err := s.Ask(c.Request.Context(), req.Question)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *handlers) messages(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MessagesResponse{Messages: s.Transcript()})
}

func (h *handlers) lookup(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return s, true
}

func describe(s *session.Session) SessionResponse {
	processed, result := s.Processed()
	return SessionResponse{
		ID:         s.ID,
		GraphState: s.GraphState().String(),
		Processed:  processed,
		Result:     result,
	}
}

// fail maps err to a status and error code
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, session.ErrMissingCredentials):
		writeError(c, http.StatusBadRequest, "missing_credentials", err.Error())
	case errors.Is(err, session.ErrNoDocuments):
		writeError(c, http.StatusBadRequest, "no_documents", err.Error())
	case errors.Is(err, session.ErrEmptyQuestion):
		writeError(c, http.StatusBadRequest, "empty_question", err.Error())
	case errors.Is(err, ingest.ErrInvalidPDF):
		writeError(c, http.StatusBadRequest, "invalid_pdf", err.Error())
	case errors.Is(err, core.ErrNoText):
		writeError(c, http.StatusBadRequest, "no_text", err.Error())
	case errors.Is(err, session.ErrNotProcessed):
		writeError(c, http.StatusConflict, "not_processed", err.Error())
	case errors.Is(err, session.ErrClosed):
		writeError(c, http.StatusConflict, "session_closed", err.Error())
	case errors.Is(err, core.ErrGraphUnavailable):
		writeError(c, http.StatusServiceUnavailable, "graph_unavailable", err.Error())
	default:
		log.Error(err, "request failed", "path", c.FullPath())
		writeError(c, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}
