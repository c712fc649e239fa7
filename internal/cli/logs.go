// Package cli — logs.go implements the "stackup logs" command.
//
// The command is a thin passthrough to the orchestration tool's logs
// subcommand; the output format is whatever the tool prints, so the
// --json global flag does not apply here.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/biblioteca-api/stackup/internal/compose"
	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/preflight"
)

// logsFlags holds the flag values for the logs command.
type logsFlags struct {
	follow bool // -f: follow log output
}

// NewLogsCommand creates the "logs" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewLogsCommand() *cobra.Command {
	flags := &logsFlags{}

	cmd := &cobra.Command{
		Use:   "logs [service]",
		Short: "Show service logs",
		Long: `Show logs for the stack's services, optionally restricted to one
service and optionally following new output.

Examples:
  stackup logs
  stackup logs -f
  stackup logs api`,

		// Zero or one positional argument (the service name).
		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			service := ""
			if len(args) == 1 {
				service = args[0]
			}
			return runLogs(cmd.Context(), service, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.follow, "follow", "f", false, "Follow log output")

	return cmd
}

// runLogs is the main logic function for the logs command.
func runLogs(ctx context.Context, service string, flags *logsFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	// The daemon ping is skipped: `compose logs` gives a clear enough
	// error of its own when the daemon is down, and a passthrough
	// command should add as little ceremony as possible.
	orchestrator, err := preflight.New(nil).Resolve(ctx)
	if err != nil {
		return err
	}

	runner := compose.NewExecRunner(orchestrator, cwd, cfg.ComposeFiles, cfg.Project, log)
	return runner.Logs(ctx, service, flags.follow)
}
