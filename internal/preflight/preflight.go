// Package preflight implements the dependency checks that gate the
// production sequencer. They answer, in order: is a container runtime
// installed, is an orchestration tool installed, and is the daemon
// actually answering. Each failure is fatal and carries the
// runtime-unavailable exit code — there is nothing sensible to do
// without these tools, so there are no retries.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/biblioteca-api/stackup/internal/model"
)

// Orchestrator is the argv prefix for invoking the orchestration tool.
// Modern installs carry compose as a docker CLI plugin; older ones ship
// the standalone docker-compose binary. Either is acceptable.
var (
	// OrchestratorPlugin invokes the compose plugin: `docker compose ...`.
	OrchestratorPlugin = []string{"docker", "compose"}

	// OrchestratorLegacy invokes the standalone binary: `docker-compose ...`.
	OrchestratorLegacy = []string{"docker-compose"}
)

// Checker runs the preflight dependency checks. The probe functions are
// fields so tests can substitute fakes — the same injectability pattern
// the port scanner uses — while production code uses New().
type Checker struct {
	// LookPath resolves a binary on the search path.
	// Defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	// ProbeComposePlugin reports whether `docker compose` works.
	// Defaults to running `docker compose version` and discarding output.
	ProbeComposePlugin func(ctx context.Context) error

	// PingDaemon verifies the Docker daemon is reachable. Nil skips the
	// daemon check (the dev sequencer only needs the binary).
	PingDaemon func(ctx context.Context) error
}

// New creates a Checker with the real probes and the given daemon ping
// (may be nil to skip dependency check C).
func New(pingDaemon func(ctx context.Context) error) *Checker {
	return &Checker{
		LookPath:           exec.LookPath,
		ProbeComposePlugin: probeComposePlugin,
		PingDaemon:         pingDaemon,
	}
}

// Resolve runs the checks in their fixed order and returns the
// orchestrator argv prefix to use for all compose invocations.
//
// Check A: container runtime binary. Check B: orchestration tool (plugin
// preferred, legacy binary accepted). Check C: daemon reachability, when
// a ping function is configured. The first failure aborts — no later
// check runs, and certainly no build/start step.
func (c *Checker) Resolve(ctx context.Context) ([]string, error) {
	// Check A — container runtime on the search path.
	if _, err := c.LookPath("docker"); err != nil {
		return nil, model.WrapCLIError(model.ExitRuntimeUnavailable,
			"docker is not installed or not on PATH", err)
	}

	// Check B — orchestration tool. The plugin form is probed first
	// because it is what current Docker installs ship; the legacy
	// standalone binary remains a valid fallback on older hosts.
	orchestrator := OrchestratorPlugin
	if err := c.ProbeComposePlugin(ctx); err != nil {
		if _, lookErr := c.LookPath("docker-compose"); lookErr != nil {
			return nil, model.WrapCLIError(model.ExitRuntimeUnavailable,
				"docker compose is not installed (neither the plugin nor the docker-compose binary)", err)
		}
		orchestrator = OrchestratorLegacy
	}

	// Check C — daemon reachability, optional.
	if c.PingDaemon != nil {
		if err := c.PingDaemon(ctx); err != nil {
			return nil, err
		}
	}

	return orchestrator, nil
}

// HasRuntime reports whether a container runtime binary is present at
// all. The dev sequencer uses this for its conditional cache step: no
// runtime means skip the step, never fail it.
func (c *Checker) HasRuntime() bool {
	_, err := c.LookPath("docker")
	return err == nil
}

// probeComposePlugin runs `docker compose version` and reports whether it
// succeeded. Output is discarded; only the exit status matters.
func probeComposePlugin(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "compose", "version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker compose version failed: %s",
			strings.TrimSpace(string(output)))
	}
	return nil
}
