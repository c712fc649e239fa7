package compose

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/biblioteca-api/stackup/internal/model"
)

// Manifest is a partial view of a docker compose file. Only the service
// map is decoded — stackup never interprets the build/volume/network
// sections, those belong to the orchestration tool.
type Manifest struct {
	// Services maps service name to its (partially decoded) definition.
	Services map[string]ServiceSpec `yaml:"services"`
}

// ServiceSpec carries the few service fields stackup reports on.
type ServiceSpec struct {
	// Image is the image reference, empty for build-only services.
	Image string `yaml:"image"`

	// Ports holds the raw port declarations. Compose allows both string
	// ("8080:80") and bare integer forms, so the values are kept untyped
	// and normalized by PublishedPorts.
	Ports []interface{} `yaml:"ports"`
}

// LoadManifest reads and decodes a compose file. It returns a
// model.CLIError with ExitConfigError when the file is missing or not
// valid YAML, because an `up` without a compose manifest cannot proceed.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("compose file %q not found", path), err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("compose file %q is not valid YAML", path), err)
	}
	return &m, nil
}

// ServiceNames returns the declared service names, sorted alphabetically
// for deterministic output.
func (m *Manifest) ServiceNames() []string {
	names := make([]string, 0, len(m.Services))
	for name := range m.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PublishedPorts returns the normalized port declarations of a service.
// Integer declarations are rendered as decimal strings; anything else is
// passed through via fmt.Sprint, which also covers the long-form mapping
// syntax well enough for display purposes.
func (m *Manifest) PublishedPorts(service string) []string {
	spec, ok := m.Services[service]
	if !ok {
		return nil
	}
	ports := make([]string, 0, len(spec.Ports))
	for _, p := range spec.Ports {
		ports = append(ports, fmt.Sprint(p))
	}
	return ports
}
