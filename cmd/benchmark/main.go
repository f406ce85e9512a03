// ABOUTME: Command-line benchmark runner for RAGAS tests
// ABOUTME: Executes RAGAS benchmarks against the real pipeline and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/docgraph/benchmarks/ragas"
	"github.com/harper/docgraph/internal/config"
	"github.com/harper/docgraph/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	testID := flag.String("test", "", "Run specific test (capital, followup, graph, unanswerable). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	memoryGraph := flag.Bool("memory-graph", false, "Use an in-memory graph per scenario instead of Neo4j")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required for benchmarks")
	}

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	if err := log.Setup(log.Options{Development: cfg.LogDevelopment, Verbosity: verbosity, Quiet: !*verbose}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("========================================")
	fmt.Println("docgraph RAGAS Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner := ragas.NewBenchmarkRunner(cfg, *memoryGraph, *verbose)

	var results []ragas.TestResult
	if *testID == "" {
		fmt.Println("Running all RAGAS benchmark tests...")
		results = runner.RunAllTests(ctx)
	} else {
		scenario, ok := ragas.GetTest(*testID)
		if !ok {
			return fmt.Errorf("unknown test ID: %s (valid options: capital, followup, graph, unanswerable)", *testID)
		}

		fmt.Printf("Running test: %s\n", scenario.Name)

		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			return fmt.Errorf("test failed: %w", err)
		}
		results = []ragas.TestResult{result}
	}

	summary := ragas.Summarize(results)

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", result.ErrorMessage)
		}
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", summary.TotalTests)
	fmt.Printf("Passed: %d\n", summary.Passed)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d benchmark(s) failed", summary.Failed)
	}
	return nil
}
