// ABOUTME: Check command verifies the Neo4j connection before processing
// ABOUTME: Reports graph size when connected and the cause when not
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/docgraph/internal/graph"
)

var checkTimeout time.Duration

// CheckResult is the outcome of a graph check
type CheckResult struct {
	URI       string       `json:"uri"`
	Connected bool         `json:"connected"`
	Error     string       `json:"error,omitempty"`
	Stats     *graph.Stats `json:"stats,omitempty"`
}

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the Neo4j connection",
		Long: `Connect to Neo4j with the configured credentials and report whether
documents could be processed. When connected, prints the number of chunks,
entities and mentions already stored.`,
		Example: `  docgraph check
  docgraph check --format json`,
		RunE: runCheck,
	}

	cmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "Connection timeout")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	conn := graph.Connect(ctx, graph.Neo4jConfig{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	})
	defer conn.Close(context.Background())

	result := CheckResult{URI: cfg.Neo4jURI}
	if err := conn.Ping(ctx); err != nil {
		result.Error = err.Error()
	} else {
		result.Connected = true
		stats, err := conn.Stats(ctx)
		if err != nil {
			return fmt.Errorf("reading graph stats: %w", err)
		}
		result.Stats = &stats
	}

	if outputFormat == "json" {
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		printCheck(cmd, result)
	}

	if !result.Connected {
		return fmt.Errorf("graph unavailable at %s", cfg.Neo4jURI)
	}
	return nil
}

func printCheck(cmd *cobra.Command, result CheckResult) {
	out := cmd.OutOrStdout()
	if !result.Connected {
		fmt.Fprintf(out, "✗ Neo4j at %s is not reachable\n", result.URI)
		fmt.Fprintf(out, "  %s\n", result.Error)
		return
	}
	fmt.Fprintf(out, "✓ Connected to Neo4j at %s\n", result.URI)
	if !quiet && result.Stats != nil {
		fmt.Fprintf(out, "  Chunks:   %d\n", result.Stats.Chunks)
		fmt.Fprintf(out, "  Entities: %d\n", result.Stats.Entities)
		fmt.Fprintf(out, "  Mentions: %d\n", result.Stats.Mentions)
	}
}
