// ABOUTME: MCP tool handler implementations for the docgraph server
// ABOUTME: Tool failures are reported as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/docgraph/internal/ingest"
	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	session *session.Session
}

// ProcessDocuments handles the process_documents tool
func (h *Handlers) ProcessDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := extractStringArray(request.GetArguments(), "paths")
	if len(paths) == 0 {
		return mcp.NewToolResultError("paths argument is required and must be a non-empty array of strings"), nil
	}

	docs, err := ingest.ReadDocuments(paths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.session.Process(ctx, docs, nil)
	if err != nil {
		log.Error(err, "document processing failed", "documents", len(paths))
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}

	return jsonResult(result)
}

// AskDocuments handles the ask_documents tool
func (h *Handlers) AskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	answer, err := h.session.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to answer: %v", err)), nil
	}

	return jsonResult(answer)
}

// GetConversation handles the get_conversation tool
func (h *Handlers) GetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"messages": h.session.Transcript(),
	})
}

// Shutdown releases the session's graph connection and external index
func (h *Handlers) Shutdown(ctx context.Context) error {
	return h.session.Close(ctx)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// extractStringArray extracts a string array from tool arguments
func extractStringArray(args map[string]interface{}, key string) []string {
	if val, ok := args[key]; ok {
		switch arr := val.(type) {
		case []interface{}:
			result := make([]string, 0, len(arr))
			for _, item := range arr {
				if str, ok := item.(string); ok && str != "" {
					result = append(result, str)
				}
			}
			return result
		case []string:
			return arr
		}
	}
	return []string{}
}
