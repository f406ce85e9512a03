// ABOUTME: Chat command processes PDFs and starts an interactive question loop
// ABOUTME: Shows ingestion progress and, optionally, the evidence behind each answer
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/harper/docgraph/internal/core"
	"github.com/harper/docgraph/internal/ingest"
	"github.com/harper/docgraph/internal/log"
	"github.com/harper/docgraph/internal/models"
	"github.com/harper/docgraph/internal/session"
)

var (
	chatEvidence      bool
	chatEvidenceWidth int
	chatMemoryGraph   bool
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <pdf>...",
		Short: "Process PDFs and ask questions about them",
		Long: `Process one or more PDF files and start an interactive chat.

The documents are chunked, embedded into a vector index and their entities
are written to the Neo4j knowledge graph. Each question is answered from the
most similar chunks, the graph chunks mentioning the question's entities and
the last few turns of the conversation.

Type "exit" or "quit" (or press Ctrl-D) to leave.`,
		Example: `  # Chat about a single report
  docgraph chat report.pdf

  # Show the retrieved context under every answer
  docgraph chat --evidence a.pdf b.pdf

  # Try it without a Neo4j server
  docgraph chat --memory-graph report.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().BoolVar(&chatEvidence, "evidence", false, "Show vector and graph context under each answer")
	cmd.Flags().IntVar(&chatEvidenceWidth, "evidence-width", 300, "Maximum characters shown per evidence chunk")
	cmd.Flags().BoolVar(&chatMemoryGraph, "memory-graph", false, "Keep the knowledge graph in memory instead of Neo4j")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(chatEvidenceWidth, "--evidence-width"); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := session.DependenciesFromConfig(cfg, session.FactoryOptions{MemoryGraph: chatMemoryGraph})
	sess := session.New("cli", session.DefaultCredentials(cfg), deps)
	defer func() {
		if err := sess.Close(context.Background()); err != nil {
			log.Error(err, "failed to close session")
		}
	}()

	docs, err := ingest.ReadDocuments(args)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Processing %d document(s)...\n", len(docs))
	}

	result, err := sess.Process(ctx, docs, newProgress(cmd.ErrOrStderr()))
	if err != nil {
		if errors.Is(err, core.ErrGraphUnavailable) {
			return fmt.Errorf("%w (start Neo4j or use --memory-graph)", err)
		}
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d page(s) into %d chunk(s); %d chunk(s) linked to %d entity mention(s).\n",
			result.Pages, result.Chunks, result.ChunksWithEntities, result.EntityMentions)
		if result.SkippedPages > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d page(s) without extractable text.\n", result.SkippedPages)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), `Ask a question ("exit" to quit).`)
	}

	return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), sess, replOptions{
		evidence:      chatEvidence,
		evidenceWidth: chatEvidenceWidth,
		json:          outputFormat == "json",
		prompt:        !quiet,
	})
}

// newProgress renders graph ingestion progress to w
func newProgress(w io.Writer) core.ProgressFunc {
	if quiet {
		return nil
	}
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("Building knowledge graph"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
		if done == total {
			_ = bar.Finish()
		}
	}
}

// asker is the part of a session the question loop needs
type asker interface {
	Ask(ctx context.Context, question string) (*models.Answer, error)
}

type replOptions struct {
	evidence      bool
	evidenceWidth int
	json          bool
	prompt        bool
}

// runREPL answers one question per input line until EOF, "exit" or "quit".
// Failed questions are reported and the loop continues.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, a asker, opts replOptions) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if opts.prompt {
			fmt.Fprint(out, "\n> ")
		}
		if !scanner.Scan() {
			if opts.prompt {
				fmt.Fprintln(out)
			}
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := a.Ask(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		if opts.json {
			if err := printJSON(out, answer); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintln(out, answer.Text)
		if opts.evidence {
			printEvidence(out, answer.Evidence, opts.evidenceWidth)
		}
	}
}

func printEvidence(w io.Writer, ev models.Evidence, width int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Vector Context (%d):\n", len(ev.VectorChunks))
	for i, chunk := range ev.VectorChunks {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, truncate(chunk, width))
	}
	if len(ev.SearchTerms) > 0 {
		fmt.Fprintf(w, "Graph Context (%d) for %s:\n", len(ev.GraphChunks), strings.Join(ev.SearchTerms, ", "))
	} else {
		fmt.Fprintf(w, "Graph Context (%d):\n", len(ev.GraphChunks))
	}
	for i, chunk := range ev.GraphChunks {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, truncate(chunk, width))
	}
}
