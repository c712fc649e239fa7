// cache.go implements the optional dev cache container step.
//
// The development sequencer wants a local Redis available before the
// server starts, but the step must never abort the sequence: a cache
// that is already running is the expected steady state on the second
// and every later `stackup dev` of the day.
package docker

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/model"
)

// CacheManager ensures the auxiliary cache container is up. It is an
// interface so the development sequencer can be tested with a fake.
type CacheManager interface {
	// Ensure brings the configured cache container into a running state
	// if possible. The returned outcome says what actually happened;
	// err is only populated alongside CacheUnavailable and is advisory —
	// callers report it and continue.
	Ensure(ctx context.Context, spec config.Cache) (model.CacheOutcome, error)
}

// SDKCacheManager implements CacheManager against a live Docker daemon.
// Discovery and restart go through the SDK; fresh creation shells out to
// `docker run -d`, which keeps the publish/name flags in the familiar
// CLI form instead of hand-building Config/HostConfig structs.
type SDKCacheManager struct {
	cli *Client
}

// NewCacheManager creates an SDKCacheManager on top of an existing client.
func NewCacheManager(cli *Client) *SDKCacheManager {
	return &SDKCacheManager{cli: cli}
}

// Ensure implements CacheManager.
//
// Decision order:
//  1. A container with the configured name exists and is running →
//     CacheAlreadyRunning (the benign case the original tolerated).
//  2. It exists but is stopped → start it → CacheRestarted.
//  3. No such container → `docker run -d --name <name> -p <p>:<p> <image>`
//     → CacheStarted.
//
// Any failure along the way yields CacheUnavailable with the underlying
// error. No CLIError is returned here on purpose: this step has no exit
// code of its own.
func (m *SDKCacheManager) Ensure(ctx context.Context, spec config.Cache) (model.CacheOutcome, error) {
	existing, err := m.findByName(ctx, spec.Name)
	if err != nil {
		return model.CacheUnavailable, err
	}

	if existing != nil {
		if existing.State == "running" {
			return model.CacheAlreadyRunning, nil
		}
		if err := m.cli.Inner().ContainerStart(ctx, existing.ContainerID, container.StartOptions{}); err != nil {
			return model.CacheUnavailable,
				fmt.Errorf("failed to start existing container %q: %w", spec.Name, err)
		}
		return model.CacheRestarted, nil
	}

	if err := runCacheContainer(ctx, spec); err != nil {
		return model.CacheUnavailable, err
	}
	return model.CacheStarted, nil
}

// findByName looks up a container by exact name, including stopped ones.
// Returns nil without error when no container matches.
//
// The Docker name filter matches substrings, so the results are compared
// against the exact name (the API reports names with a leading "/").
func (m *SDKCacheManager) findByName(ctx context.Context, name string) (*model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("name", name),
	)

	containers, err := m.cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	for _, c := range containers {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == name {
				info := containerToInfo(c)
				return &info, nil
			}
		}
	}
	return nil, nil
}

// runCacheContainer creates and starts a fresh cache container with
// "docker run -d". The port is published host:container on the same
// number, matching the original launcher's fixed -p mapping.
func runCacheContainer(ctx context.Context, spec config.Cache) error {
	publish := fmt.Sprintf("%d:%d", spec.Port, spec.Port)
	args := []string{
		"run", "-d",
		"--name", spec.Name,
		"-p", publish,
		spec.Image,
	}

	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker run failed for container %q: %s",
			spec.Name, strings.TrimSpace(string(output)))
	}
	return nil
}
