// Package cli — dev.go implements the "stackup dev" command.
//
// The dev command is the development bootstrap sequencer: install
// dependencies, make sure the auxiliary cache container is up when a
// container runtime exists, then launch the application server in the
// foreground with live reload. The command blocks until the server
// process is terminated and propagates its exit status.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/biblioteca-api/stackup/internal/bootstrap"
	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/docker"
	"github.com/biblioteca-api/stackup/internal/execx"
	"github.com/biblioteca-api/stackup/internal/preflight"
)

// devFlags holds the flag values for the dev command.
type devFlags struct {
	noCache   bool // --no-cache: skip the cache container step
	noInstall bool // --no-install: skip the dependency install step
}

// NewDevCommand creates the "dev" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDevCommand() *cobra.Command {
	flags := &devFlags{}

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the application locally with live reload",
		Long: `Prepare and run a local, non-containerized development server.

The command installs the declared dependencies, starts the auxiliary
cache container when a container runtime is available (an instance that
is already running is fine), and then launches the dev server with live
reload in the foreground. It blocks until the server is terminated.

Examples:
  stackup dev
  stackup dev --no-cache
  stackup dev --no-install`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false,
		"Skip starting the auxiliary cache container")
	cmd.Flags().BoolVar(&flags.noInstall, "no-install", false,
		"Skip the dependency install step")

	return cmd
}

// runDev is the main logic function for the dev command. It wires the
// real executors into the development sequencer.
func runDev(ctx context.Context, flags *devFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	checker := preflight.New(nil)

	seq := &bootstrap.Development{
		Exec:        &execx.Attached{Dir: cwd, Log: log},
		Cache:       devCacheManager(checker),
		HasRuntime:  checker.HasRuntime,
		Config:      cfg,
		SkipCache:   flags.noCache,
		SkipInstall: flags.noInstall,
		Out:         os.Stdout,
		Log:         log,
	}
	return seq.Run(ctx)
}

// devCacheManager builds the real cache manager when the daemon is
// reachable. Returning nil simply disables the step in the sequencer —
// the dev command must work on a host with no Docker at all.
func devCacheManager(checker *preflight.Checker) docker.CacheManager {
	if !checker.HasRuntime() {
		return nil
	}
	cli, err := docker.NewClient()
	if err != nil {
		log.Debugf("docker client unavailable, cache step will be skipped: %v", err)
		return nil
	}
	// The client stays open for the life of the process; the dev
	// command blocks in the foreground server anyway.
	return docker.NewCacheManager(cli)
}
