// Package model defines the domain types for the stackup CLI.
//
// All entities in this package represent the data passed between the
// bootstrap sequencers, the compose/docker layers, and the CLI output
// formatting. The types are transient: stackup persists no state of its
// own, everything is reconstructed from the Docker daemon and the
// configuration file at runtime.
package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint is a user-facing URL printed in the post-startup summary.
// Endpoints describe the external collaborators of the stack (API, docs,
// metrics UI, dashboard UI) — stackup never talks to them except for the
// optional health probe.
type Endpoint struct {
	// Name is the short human-readable label (e.g., "API", "Grafana").
	Name string `json:"name" mapstructure:"name"`

	// URL is the address printed verbatim (e.g., "http://localhost:9090").
	URL string `json:"url" mapstructure:"url"`

	// Note is an optional annotation appended in parentheses,
	// such as default credentials for the dashboard UI.
	Note string `json:"note,omitempty" mapstructure:"note"`
}

// Validate checks that the endpoint has a name and a parseable URL with
// a scheme and host. Endpoints come from user configuration, so the
// error messages name the offending field.
func (e *Endpoint) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("endpoint: name must not be empty")
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return fmt.Errorf("endpoint %q: invalid URL %q: %w", e.Name, e.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint %q: URL %q must include scheme and host", e.Name, e.URL)
	}
	return nil
}

// HostPort extracts the numeric host port from the endpoint URL.
// Scheme defaults apply when no explicit port is present (http → 80,
// https → 443). Returns 0 when the port cannot be determined, which
// callers treat as "skip the availability check".
func (e *Endpoint) HostPort() int {
	u, err := url.Parse(e.URL)
	if err != nil {
		return 0
	}
	if p := u.Port(); p != "" {
		var port int
		if _, err := fmt.Sscanf(p, "%d", &port); err == nil {
			return port
		}
		return 0
	}
	switch u.Scheme {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return 0
	}
}

// ContainerInfo holds runtime information about a Docker container that
// belongs to the managed stack. This data is fetched from the Docker API
// for the status command, never persisted.
type ContainerInfo struct {
	// ContainerID is the Docker container identifier (SHA-256 hash prefix).
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// ServiceName is the Docker Compose service name, if the container
	// was created by compose. Empty for the dev cache container.
	ServiceName string `json:"serviceName,omitempty"`

	// State is the short Docker container state string
	// (e.g., "running", "exited", "created").
	State string `json:"state"`

	// Status is Docker's longer status line (e.g., "Up 2 minutes").
	Status string `json:"status,omitempty"`

	// Ports is a compact rendering of the published port mappings.
	Ports string `json:"ports,omitempty"`

	// Labels is the full label set on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// CacheOutcome describes how the optional dev cache container step ended.
// The step itself is never fatal (a failed cache start must not abort the
// dev sequence), so the outcome is reported rather than returned as an error.
type CacheOutcome string

const (
	// CacheStarted means a fresh cache container was created and started.
	CacheStarted CacheOutcome = "started"

	// CacheRestarted means an existing stopped container with the expected
	// name was found and started again.
	CacheRestarted CacheOutcome = "restarted"

	// CacheAlreadyRunning means a container with the expected name is
	// already up. This is the benign "failure" the original tolerated.
	CacheAlreadyRunning CacheOutcome = "already-running"

	// CacheSkipped means no container runtime is available on this host,
	// so the step was skipped entirely.
	CacheSkipped CacheOutcome = "skipped"

	// CacheUnavailable means the start attempt failed for some other
	// reason. The dev sequence still continues; the server may use an
	// external cache or run degraded.
	CacheUnavailable CacheOutcome = "unavailable"
)

// String returns the string representation of CacheOutcome.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI messages.
func (o CacheOutcome) String() string {
	return string(o)
}

// IsValid checks whether the CacheOutcome value is one of the
// predefined outcomes.
func (o CacheOutcome) IsValid() bool {
	switch o {
	case CacheStarted, CacheRestarted, CacheAlreadyRunning, CacheSkipped, CacheUnavailable:
		return true
	default:
		return false
	}
}

// ExitCode defines the stackup process exit codes. These allow scripts
// and CI systems to programmatically distinguish failure modes, replacing
// the original launcher's mix of "exit 1" and unchecked command statuses.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the stackup configuration or the compose
	// manifest was missing or invalid.
	ExitConfigError ExitCode = 2

	// ExitRuntimeUnavailable indicates the container runtime or the
	// orchestration tool is missing, or the Docker daemon is unreachable.
	ExitRuntimeUnavailable ExitCode = 3

	// ExitComposeFailed indicates a compose build/up/down invocation
	// returned a non-zero status.
	ExitComposeFailed ExitCode = 4

	// ExitInstallFailed indicates the dev dependency install step failed.
	ExitInstallFailed ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
