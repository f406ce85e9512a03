// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Config loading, JSON output and small formatting helpers
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harper/docgraph/internal/config"
	"github.com/harper/docgraph/internal/log"
)

// loadConfig reads .env and the environment, switching to development
// logging when configured
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LogDevelopment {
		verbosity := 0
		if verbose {
			verbosity = 1
		}
		if err := log.Setup(log.Options{Development: true, Verbosity: verbosity, Quiet: quiet}); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
