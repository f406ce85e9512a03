// ABOUTME: Entities command shows which graph terms a piece of text yields
// ABOUTME: Useful for checking why a question does or does not reach the graph
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/docgraph/internal/entity"
)

// NewEntitiesCmd creates the entities command
func NewEntitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities <text>...",
		Short: "Extract entities from text",
		Long: `Run the entity extractor on the given text and print the filtered terms:
named entities plus noun phrases, without stop words or strings of two
characters or fewer. These are the terms used to query the knowledge graph.`,
		Example: `  docgraph entities "What is the capital of France?"
  docgraph entities --format json The Eiffel Tower is in Paris.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEntities,
	}

	return cmd
}

func runEntities(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	terms, err := entity.NewExtractor().Extract(text)
	if err != nil {
		return fmt.Errorf("extracting entities: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"text":     text,
			"entities": terms,
		})
	}

	if len(terms) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No entities found")
		}
		return nil
	}
	for _, term := range terms {
		fmt.Fprintln(cmd.OutOrStdout(), term)
	}
	return nil
}
