// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents process PDFs and ask questions about them via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/mcp"
	"github.com/harper/docgraph/internal/session"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var mcpMemoryGraph bool

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docgraph as an MCP (Model Context Protocol) server on stdio. The server
holds one session: agents call process_documents with PDF paths, then
ask_documents with questions, and get_conversation to read the transcript.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  docgraph mcp

  # Configure in the client's config file:
  # {
  #   "mcpServers": {
  #     "docgraph": {
  #       "command": "docgraph",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	cmd.Flags().BoolVar(&mcpMemoryGraph, "memory-graph", false, "Keep the knowledge graph in memory instead of Neo4j")

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.OpenAIKey == "" {
		log.Info("OPENAI_API_KEY not set; processing and questions will fail until it is provided")
	}

	deps := session.DependenciesFromConfig(cfg, session.FactoryOptions{MemoryGraph: mcpMemoryGraph})
	sess := session.New("mcp", session.DefaultCredentials(cfg), deps)

	server := mcpserver.NewMCPServer(
		"docgraph",
		versionInfo.Version,
	)

	handlers := mcp.RegisterTools(server, sess)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	if err := handlers.Shutdown(context.Background()); err != nil {
		log.Error(err, "failed to close session")
	}
	return runErr
}
