// ABOUTME: MCP tool definitions and registration for the docgraph server
// ABOUTME: Exposes document processing, question answering and the conversation transcript
package mcp

import (
	"github.com/harper/docgraph/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server. Every tool works
// against the single session owned by this server process.
func RegisterTools(server *mcpserver.MCPServer, sess *session.Session) *Handlers {
	handlers := &Handlers{session: sess}

	// 1. process_documents - Build the vector index and graph from PDFs
	server.AddTool(mcp.Tool{
		Name:        "process_documents",
		Description: "Process one or more PDF files: extract text, chunk it, build a vector index and record entity mentions in the knowledge graph. Replaces any previously processed documents.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"paths": map[string]interface{}{
					"type":        "array",
					"description": "Absolute paths of PDF files to process",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"paths"},
		},
	}, handlers.ProcessDocuments)

	// 2. ask_documents - Answer a question from the processed documents
	server.AddTool(mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question using vector search, knowledge graph lookup and recent conversation history over the processed documents.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question about the processed documents",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskDocuments)

	// 3. get_conversation - Return the transcript
	server.AddTool(mcp.Tool{
		Name:        "get_conversation",
		Description: "Return every question and answer exchanged in this session.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetConversation)

	return handlers
}
