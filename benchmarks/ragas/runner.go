// ABOUTME: Test runner for RAGAS benchmarks - executes scenarios and collects results
// ABOUTME: Each scenario runs in a fresh session: process the document, ask the turns, score the final answer

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harper/docgraph/internal/config"
	"github.com/harper/docgraph/internal/graph"
	"github.com/harper/docgraph/internal/models"
	"github.com/harper/docgraph/internal/session"
)

// BenchmarkRunner executes RAGAS benchmark tests
type BenchmarkRunner struct {
	deps    session.Dependencies
	creds   session.Credentials
	metrics *MetricsCalculator
	verbose bool
	out     io.Writer
}

// NewBenchmarkRunner creates a runner wired to real OpenAI and graph clients.
// With memoryGraph each scenario gets its own in-process graph; otherwise
// scenarios share the configured Neo4j database.
func NewBenchmarkRunner(cfg *config.Config, memoryGraph, verbose bool) *BenchmarkRunner {
	deps := session.DependenciesFromConfig(cfg, session.FactoryOptions{MemoryGraph: memoryGraph})
	if memoryGraph {
		deps.ConnectGraph = func(context.Context, session.Credentials) *graph.Conn {
			return graph.NewConnected(graph.NewMemoryStore(), graph.WithContextLimit(cfg.GraphLimit))
		}
	}
	return NewBenchmarkRunnerWithDependencies(deps, session.DefaultCredentials(cfg), verbose)
}

// NewBenchmarkRunnerWithDependencies creates a runner from explicit session dependencies
func NewBenchmarkRunnerWithDependencies(deps session.Dependencies, creds session.Credentials, verbose bool) *BenchmarkRunner {
	return &BenchmarkRunner{
		deps:    deps,
		creds:   creds,
		metrics: NewMetricsCalculator(),
		verbose: verbose,
		out:     os.Stdout,
	}
}

// SetOutput redirects progress output
func (r *BenchmarkRunner) SetOutput(w io.Writer) {
	r.out = w
}

// RunTest executes a single benchmark test
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	sess := session.New(fmt.Sprintf("bench-%s-%d", scenario.ID, time.Now().UnixNano()), r.creds, r.deps)
	defer func() {
		_ = sess.Close(context.Background())
	}()

	processed, err := sess.ProcessText(ctx, scenario.Document, nil)
	if err != nil {
		return TestResult{}, fmt.Errorf("processing failed: %w", err)
	}
	if r.verbose {
		fmt.Fprintf(r.out, "✓ Processed %d chunk(s), %d entity mention(s)\n\n", processed.Chunks, processed.EntityMentions)
	}

	var final *models.Answer
	for _, turn := range scenario.Turns {
		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] User: %s\n", turn.TurnNumber, turn.UserMessage)
		}

		answer, err := sess.Ask(ctx, turn.UserMessage)
		if err != nil {
			return TestResult{}, fmt.Errorf("turn %d failed: %w", turn.TurnNumber, err)
		}

		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] AI: %s\n", turn.TurnNumber, truncateResponse(answer.Text, 150))
			fmt.Fprintf(r.out, "  [DEBUG] terms=%v vector=%d graph=%d\n\n",
				answer.Evidence.SearchTerms, len(answer.Evidence.VectorChunks), len(answer.Evidence.GraphChunks))
		}

		if turn.TurnNumber == scenario.GroundTruth.FinalQueryTurn {
			final = answer
		}
	}

	if final == nil {
		return TestResult{}, fmt.Errorf("scenario %s has no turn %d", scenario.ID, scenario.GroundTruth.FinalQueryTurn)
	}

	result := r.metrics.EvaluateTest(scenario, final)

	if r.verbose {
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "RESULTS: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Fprintf(r.out, "Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Fprintf(r.out, "Overall Score: %.2f\n", result.OverallScore)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
		fmt.Fprintf(r.out, "========================================\n\n")
	}

	return result, nil
}

// RunAllTests runs every scenario. A scenario that errors is recorded as a
// failed result and the run continues.
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) []TestResult {
	scenarios := GetAllTests()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			result = TestResult{
				TestID:       scenario.ID,
				TestName:     scenario.Name,
				Status:       "FAIL",
				ErrorMessage: err.Error(),
			}
		}
		results = append(results, result)
	}

	return results
}

// Summary is the exported benchmark report
type Summary struct {
	Timestamp  string       `json:"timestamp"`
	TotalTests int          `json:"total_tests"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Results    []TestResult `json:"results"`
}

// Summarize counts passed and failed results
func Summarize(results []TestResult) Summary {
	summary := Summary{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}
	for _, result := range results {
		if result.Status == "PASS" {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// ExportResults exports test results to JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}
