// ABOUTME: Tests for the docgraph root command, its global flags and subcommand wiring
// ABOUTME: Checks each subcommand's own flags, argument rules and help text

package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// execute runs the root command with args and returns combined output
func execute(args ...string) (string, error) {
	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

func findSubcommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, sub := range root.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	t.Fatalf("subcommand %q not registered", name)
	return nil
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "docgraph" {
		t.Errorf("Use = %q, want docgraph", cmd.Use)
	}
	if !strings.Contains(cmd.Long, "███") {
		t.Error("Long description should carry the banner")
	}
	for _, env := range []string{"OPENAI_API_KEY", "NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD"} {
		if !strings.Contains(cmd.Long, env) {
			t.Errorf("Long description should mention %s", env)
		}
	}
	if !cmd.SilenceUsage {
		t.Error("SilenceUsage should be set")
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"verbose", "v", "false"},
		{"quiet", "q", "false"},
		{"format", "", "auto"},
	}
	for _, tt := range tests {
		flag := cmd.PersistentFlags().Lookup(tt.name)
		if flag == nil {
			t.Errorf("--%s not found", tt.name)
			continue
		}
		if flag.Shorthand != tt.shorthand || flag.DefValue != tt.defValue {
			t.Errorf("--%s = (-%s, %q), want (-%s, %q)", tt.name, flag.Shorthand, flag.DefValue, tt.shorthand, tt.defValue)
		}
	}
}

func TestRootCmd_VerboseQuietConflict(t *testing.T) {
	// check would dial Neo4j if the pre-run hook let it through
	_, err := execute("--verbose", "--quiet", "check")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error = %v, want mutually exclusive", err)
	}

	if _, err := execute("-q", "version"); err != nil {
		t.Errorf("quiet version: %v", err)
	}
}

func TestSubcommands_LocalFlags(t *testing.T) {
	root := NewRootCmd()

	tests := []struct {
		command string
		flags   map[string]string
	}{
		{"chat", map[string]string{"evidence": "false", "evidence-width": "300", "memory-graph": "false"}},
		{"serve", map[string]string{"addr": "", "memory-graph": "false"}},
		{"mcp", map[string]string{"memory-graph": "false"}},
		{"check", map[string]string{"timeout": "10s"}},
		{"entities", nil},
		{"version", nil},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub := findSubcommand(t, root, tt.command)
			for name, def := range tt.flags {
				flag := sub.Flags().Lookup(name)
				if flag == nil {
					t.Errorf("--%s missing", name)
					continue
				}
				if flag.DefValue != def {
					t.Errorf("--%s default = %q, want %q", name, flag.DefValue, def)
				}
			}
		})
	}
}

func TestSubcommands_RequireArguments(t *testing.T) {
	for _, name := range []string{"chat", "entities"} {
		t.Run(name, func(t *testing.T) {
			_, err := execute(name)
			if err == nil || !strings.Contains(err.Error(), "requires at least 1 arg") {
				t.Errorf("%s without arguments: error = %v", name, err)
			}
		})
	}
}

func TestChatCmd_RejectsEvidenceWidth(t *testing.T) {
	_, err := execute("chat", "--evidence-width", "0", "report.pdf")
	if err == nil || !strings.Contains(err.Error(), "--evidence-width must be positive") {
		t.Errorf("error = %v, want evidence width rejection", err)
	}
}

func TestHelp_DescribesDocgraphFlags(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"--help"}, []string{"chat", "serve", "mcp", "check", "entities", "--format"}},
		{[]string{"chat", "--help"}, []string{"chat <pdf>...", "--evidence-width", "--memory-graph", "docgraph chat --evidence a.pdf b.pdf"}},
		{[]string{"serve", "--help"}, []string{"--addr", "DOCGRAPH_HTTP_ADDR"}},
		{[]string{"check", "--help"}, []string{"--timeout", "docgraph check --format json"}},
		{[]string{"entities", "--help"}, []string{"entities <text>..."}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(tt.args...)
			if err != nil {
				t.Fatalf("help failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("help output missing %q", want)
				}
			}
		})
	}
}
