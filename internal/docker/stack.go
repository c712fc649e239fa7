// stack.go implements container discovery for the status command.
//
// Compose labels every container it creates with the project name, which
// lets stackup reconstruct the deployment's state straight from the
// Docker API without parsing the orchestration tool's text output.
package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/biblioteca-api/stackup/internal/model"
)

// Compose-owned label keys read back when listing stack containers.
const (
	// labelComposeProject is set by compose to the -p project name.
	labelComposeProject = "com.docker.compose.project"

	// labelComposeService is set by compose to the service name from
	// the YAML definition.
	labelComposeService = "com.docker.compose.service"
)

// ListStackContainers queries the Docker daemon for all containers that
// belong to the given compose project, including stopped ones. Stopped
// containers matter: a service that crashed after `up` should still show
// in the status table rather than silently disappear.
//
// The filter runs server-side in the daemon, which is cheaper than
// listing everything and filtering in Go.
func ListStackContainers(ctx context.Context, cli *Client, project string) ([]model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", labelComposeProject+"="+project),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitRuntimeUnavailable,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}

	// Sort by service name, then container name, for stable output.
	sort.Slice(result, func(i, j int) bool {
		if result[i].ServiceName != result[j].ServiceName {
			return result[i].ServiceName < result[j].ServiceName
		}
		return result[i].ContainerName < result[j].ContainerName
	})

	return result, nil
}

// containerToInfo converts a Docker API container summary to the domain
// model. This is a pure mapping function with no side effects.
//
// The Docker API returns container names with a leading "/" prefix
// (e.g., "/biblioteca-api-1"), which is stripped for display.
func containerToInfo(c types.Container) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		ServiceName:   c.Labels[labelComposeService],
		State:         c.State,
		Status:        c.Status,
		Ports:         FormatPorts(c.Ports),
		Labels:        c.Labels,
	}
}

// FormatPorts renders the API port list the way `docker ps` does:
// "0.0.0.0:9090->9090/tcp" for published ports, "6379/tcp" for exposed
// but unpublished ones. Entries are sorted by container port and joined
// with commas; an empty list renders as "-".
//
// Exported because the status command's text output is built on it and
// the rendering is covered by tests.
func FormatPorts(ports []types.Port) string {
	if len(ports) == 0 {
		return "-"
	}

	sorted := make([]types.Port, len(ports))
	copy(sorted, ports)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PrivatePort != sorted[j].PrivatePort {
			return sorted[i].PrivatePort < sorted[j].PrivatePort
		}
		return sorted[i].PublicPort < sorted[j].PublicPort
	})

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if p.PublicPort != 0 {
			ip := p.IP
			if ip == "" {
				ip = "0.0.0.0"
			}
			parts = append(parts, fmt.Sprintf("%s:%d->%d/%s", ip, p.PublicPort, p.PrivatePort, p.Type))
		} else {
			parts = append(parts, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
		}
	}
	return strings.Join(parts, ", ")
}
