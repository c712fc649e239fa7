// Package cli — status.go implements the "stackup status" command.
//
// Unlike the ps step of "up", which streams the orchestration tool's
// output verbatim, status queries the Docker API directly (filtering by
// the compose project label) and renders its own table or JSON. That
// makes the output stable and machine-consumable with --json.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biblioteca-api/stackup/internal/compose"
	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/docker"
	"github.com/biblioteca-api/stackup/internal/model"
)

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stack's container status",
		Long: `Show all containers that belong to the configured compose project,
including stopped ones, with their state and published ports.

Examples:
  stackup status
  stackup status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}

	return cmd
}

// runStatus is the main logic function for the status command.
func runStatus(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns CLIError
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	log.Debug("connected to Docker daemon")

	containers, err := docker.ListStackContainers(ctx, cli, cfg.Project)
	if err != nil {
		return err
	}
	log.Debugf("found %d stack containers", len(containers))

	printStatusResult(cfg.Project, containers, declaredServices(cfg))
	return nil
}

// declaredServices reads the service names from the compose manifest.
// Used only to enrich the "no containers" message; a missing or broken
// manifest is not an error for status, so failures yield nil.
func declaredServices(cfg *config.Config) []string {
	m, err := compose.LoadManifest(cfg.ComposeFiles[0])
	if err != nil {
		log.Debugf("compose manifest unavailable: %v", err)
		return nil
	}
	return m.ServiceNames()
}

// printStatusResult outputs the container list in text or JSON format,
// depending on the global --json flag.
func printStatusResult(project string, containers []model.ContainerInfo, declared []string) {
	if IsJSONOutput() {
		printStatusResultJSON(project, containers)
	} else {
		printStatusResultText(project, containers, declared)
	}
}

// statusContainerJSON is the JSON output structure for a single container.
type statusContainerJSON struct {
	Name    string `json:"name"`
	Service string `json:"service,omitempty"`
	State   string `json:"state"`
	Status  string `json:"status,omitempty"`
	Ports   string `json:"ports,omitempty"`
}

// printStatusResultJSON outputs the container list as structured JSON
// under a top-level "project" / "containers" pair.
func printStatusResultJSON(project string, containers []model.ContainerInfo) {
	type resultJSON struct {
		Project    string                `json:"project"`
		Containers []statusContainerJSON `json:"containers"`
	}

	result := resultJSON{
		Project: project,
		// Empty slice rather than nil so JSON shows [] instead of null.
		Containers: make([]statusContainerJSON, 0, len(containers)),
	}

	for _, c := range containers {
		result.Containers = append(result.Containers, statusContainerJSON{
			Name:    c.ContainerName,
			Service: c.ServiceName,
			State:   c.State,
			Status:  c.Status,
			Ports:   c.Ports,
		})
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printStatusResultText outputs the container list as a fixed-width
// text table, one row per container. When the daemon reports nothing,
// the declared compose services are named so the user sees what an
// `up` would create.
func printStatusResultText(project string, containers []model.ContainerInfo, declared []string) {
	if len(containers) == 0 {
		fmt.Printf("No containers found for project %q. Run \"stackup up\" first.\n", project)
		if len(declared) > 0 {
			fmt.Printf("Declared services: %s\n", strings.Join(declared, ", "))
		}
		return
	}

	fmt.Printf("%-30s %-15s %-10s %s\n", "NAME", "SERVICE", "STATE", "PORTS")
	for _, c := range containers {
		service := c.ServiceName
		if service == "" {
			service = "-"
		}
		fmt.Printf("%-30s %-15s %-10s %s\n",
			truncate(c.ContainerName, 30),
			truncate(service, 15),
			c.State,
			c.Ports,
		)
	}
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
// Container names are user-controlled and can exceed the column width.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return strings.TrimSpace(s[:max-3]) + "..."
}
