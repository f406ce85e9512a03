// ABOUTME: Root command and global flags for the docgraph CLI
// ABOUTME: Validates --verbose/--quiet and configures logging before any subcommand runs
package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/harper/docgraph/internal/log"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗  ██████╗  ██████╗ ██████╗ ██████╗  █████╗ ██████╗ ██╗  ██╗
██╔══██╗██╔═══██╗██╔════╝██╔════╝ ██╔══██╗██╔══██╗██╔══██╗██║  ██║
██║  ██║██║   ██║██║     ██║  ███╗██████╔╝███████║██████╔╝███████║
██║  ██║██║   ██║██║     ██║   ██║██╔══██╗██╔══██║██╔═══╝ ██╔══██║
██████╔╝╚██████╔╝╚██████╗╚██████╔╝██║  ██║██║  ██║██║     ██║  ██║
╚═════╝  ╚═════╝  ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝  ╚═╝`

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docgraph",
		Short: "Chat with your PDFs through a vector index and a knowledge graph",
		Long: banner + `

Docgraph answers questions about PDF documents. Each document is split into
overlapping chunks that feed a vector index, and the entities found in every
chunk are recorded in a Neo4j knowledge graph. Answers combine both sources
with the recent conversation.

Configuration comes from the environment (and a .env file):
  OPENAI_API_KEY, NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			verbosity := 0
			if verbose {
				verbosity = 1
			}
			return log.Setup(log.Options{Verbosity: verbosity, Quiet: quiet})
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only show errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json")

	cmd.AddCommand(
		NewChatCmd(),
		NewServeCmd(),
		NewMCPCmd(),
		NewCheckCmd(),
		NewEntitiesCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
