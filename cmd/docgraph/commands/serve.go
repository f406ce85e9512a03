// ABOUTME: Serve command starts the HTTP session API
// ABOUTME: Shuts down gracefully on SIGINT/SIGTERM, closing every open session
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/docgraph/internal/httpapi"
	"github.com/harper/docgraph/internal/session"
)

var (
	serveAddr        string
	serveMemoryGraph bool
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Clients create a session, upload PDFs to it and then chat. Credentials may be
sent when creating a session; anything omitted falls back to the server's
environment.

Routes:
  POST   /api/v1/sessions
  POST   /api/v1/sessions/:id/documents   (multipart field "files")
  POST   /api/v1/sessions/:id/chat        {"question": "..."}
  GET    /api/v1/sessions/:id/messages
  DELETE /api/v1/sessions/:id
  GET    /api/v1/health`,
		Example: `  docgraph serve
  docgraph serve --addr 127.0.0.1:9000`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from DOCGRAPH_HTTP_ADDR)")
	cmd.Flags().BoolVar(&serveMemoryGraph, "memory-graph", false, "Keep the knowledge graph in memory instead of Neo4j")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	deps := session.DependenciesFromConfig(cfg, session.FactoryOptions{MemoryGraph: serveMemoryGraph})
	manager := session.NewManager(deps, session.DefaultCredentials(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "docgraph API listening on %s\n", addr)
	}

	if err := httpapi.NewServer(addr, manager).Run(ctx, cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
