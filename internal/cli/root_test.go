package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRootCommandRegistersSubcommands verifies all five subcommands
// are wired onto the root.
func TestNewRootCommandRegistersSubcommands(t *testing.T) {
	rootCmd := NewRootCommand()

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"up", "dev", "status", "logs", "down"} {
		assert.True(t, names[want], "subcommand %q should be registered", want)
	}
}

// TestRootCommandSilencesCobraOutput guards the error-handling contract:
// cobra must not print usage or errors itself, Execute formats them.
func TestRootCommandSilencesCobraOutput(t *testing.T) {
	rootCmd := NewRootCommand()
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

// TestVersionString verifies the --version output includes all three
// build-time fields.
func TestVersionString(t *testing.T) {
	rootCmd := NewRootCommand()
	require.NotEmpty(t, rootCmd.Version)
	assert.Contains(t, rootCmd.Version, "commit:")
	assert.Contains(t, rootCmd.Version, "built:")
}

// TestTruncate covers the status table's name shortening.
func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short enough", in: "api", max: 10, want: "api"},
		{name: "exact fit", in: "0123456789", max: 10, want: "0123456789"},
		{name: "truncated with ellipsis", in: "biblioteca-prometheus-1-extra", max: 15, want: "biblioteca-p..."},
		{name: "tiny budget", in: "abcdef", max: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}
