// Package cli — up.go implements the "stackup up" command.
//
// The up command is the production bootstrap sequencer. It verifies the
// container runtime, the orchestration tool, and the daemon are all
// available, then builds and starts the full service group, waits for
// readiness, and reports status and endpoints.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/biblioteca-api/stackup/internal/bootstrap"
	"github.com/biblioteca-api/stackup/internal/compose"
	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/docker"
	"github.com/biblioteca-api/stackup/internal/health"
	"github.com/biblioteca-api/stackup/internal/port"
	"github.com/biblioteca-api/stackup/internal/preflight"
)

// upFlags holds the flag values for the up command.
type upFlags struct {
	dryRun bool // --dry-run: print external commands instead of running them
}

// NewUpCommand creates the "up" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewUpCommand() *cobra.Command {
	flags := &upFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Build and start the full containerized stack",
		Long: `Build and start all services of the containerized deployment.

The command verifies that docker and docker compose are installed and the
daemon is reachable, then builds the images, starts the service group in
detached mode, waits for the API health endpoint (or a fixed duration when
no health URL is configured), prints the service status, and ends with the
endpoint URLs.

Examples:
  stackup up
  stackup up --dry-run
  stackup up -v`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false,
		"Print the external commands without executing them")

	return cmd
}

// runUp is the main logic function for the up command. It performs the
// dependency checks, wires the real collaborators, and hands control to
// the production sequencer.
func runUp(ctx context.Context, flags *upFlags) error {
	// Step 1: Load configuration (built-in defaults when no file exists).
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	// Step 2: Dependency checks A (runtime), B (orchestrator), and
	// C (daemon ping). Any failure aborts before a single build or
	// start command is issued. Dry-run skips the daemon ping — the
	// point of a dry run is to work without a live environment.
	pingDaemon := daemonPing
	if flags.dryRun {
		pingDaemon = nil
	}
	orchestrator, err := preflight.New(pingDaemon).Resolve(ctx)
	if err != nil {
		return err
	}
	log.Debugf("orchestrator: %v", orchestrator)

	// Step 3: Read the compose manifest for the service banner. This
	// also fails fast when the manifest is missing, before any build.
	manifest, err := compose.LoadManifest(cfg.ComposeFiles[0])
	if err != nil {
		return err
	}

	// Step 4: Assemble the sequencer and run it.
	runner := compose.NewExecRunner(orchestrator, cwd, cfg.ComposeFiles, cfg.Project, log)
	runner.DryRun = flags.dryRun

	seq := &bootstrap.Production{
		Compose:  runner,
		Waiter:   upWaiter(cfg, flags.dryRun),
		Scanner:  port.NewScanner(),
		Config:   cfg,
		Services: manifest.ServiceNames(),
		Out:      os.Stdout,
		Log:      log,
	}
	return seq.Run(ctx)
}

// upWaiter selects the readiness waiter. Dry runs wait for nothing.
func upWaiter(cfg *config.Config, dryRun bool) health.Waiter {
	if dryRun {
		return &health.FixedWait{Duration: 0}
	}
	return health.ForConfig(cfg, log)
}

// daemonPing is dependency check C: connect to the Docker socket and
// ping the daemon. The client lives only for the duration of the check.
func daemonPing(ctx context.Context) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()
	return cli.Ping(ctx)
}
