// Package cli — down.go implements the "stackup down" command.
//
// down stops and removes the compose project's containers and networks,
// the counterpart to "stackup up" that the original launcher only
// mentioned as a printed hint.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biblioteca-api/stackup/internal/compose"
	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/preflight"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	volumes bool // --volumes: also remove named and anonymous volumes
}

// NewDownCommand creates the "down" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the stack",
		Long: `Stop and remove all containers and networks of the compose project.

Volumes are preserved unless --volumes is given, so a later "stackup up"
finds its data intact by default.

Examples:
  stackup down
  stackup down --volumes`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.volumes, "volumes", false,
		"Also remove named and anonymous volumes")

	return cmd
}

// runDown is the main logic function for the down command.
func runDown(ctx context.Context, flags *downFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	orchestrator, err := preflight.New(nil).Resolve(ctx)
	if err != nil {
		return err
	}

	runner := compose.NewExecRunner(orchestrator, cwd, cfg.ComposeFiles, cfg.Project, log)
	if err := runner.Down(ctx, flags.volumes); err != nil {
		return err
	}

	fmt.Printf("Stack %q is down.\n", cfg.Project)
	return nil
}
