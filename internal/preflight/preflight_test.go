package preflight

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioteca-api/stackup/internal/model"
)

// fakeLookPath returns a LookPath substitute that knows only the given
// binaries.
func fakeLookPath(available ...string) func(string) (string, error) {
	set := make(map[string]bool, len(available))
	for _, b := range available {
		set[b] = true
	}
	return func(file string) (string, error) {
		if set[file] {
			return "/usr/bin/" + file, nil
		}
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
	}
}

// requireRuntimeUnavailable asserts the error is a CLIError with the
// runtime-unavailable exit code.
func requireRuntimeUnavailable(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitRuntimeUnavailable, cliErr.Code)
}

// TestResolveDockerMissing is dependency check A: no container runtime
// on the PATH is fatal before anything else is probed.
func TestResolveDockerMissing(t *testing.T) {
	probed := false
	c := &Checker{
		LookPath: fakeLookPath(), // nothing installed
		ProbeComposePlugin: func(ctx context.Context) error {
			probed = true
			return nil
		},
	}

	_, err := c.Resolve(context.Background())
	requireRuntimeUnavailable(t, err)
	assert.False(t, probed, "check B must not run when check A fails")
}

// TestResolvePluginPreferred verifies the modern `docker compose` plugin
// is selected when it works.
func TestResolvePluginPreferred(t *testing.T) {
	c := &Checker{
		LookPath:           fakeLookPath("docker", "docker-compose"),
		ProbeComposePlugin: func(ctx context.Context) error { return nil },
	}

	orch, err := c.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OrchestratorPlugin, orch)
}

// TestResolveLegacyFallback verifies the standalone docker-compose
// binary is accepted when the plugin probe fails.
func TestResolveLegacyFallback(t *testing.T) {
	c := &Checker{
		LookPath:           fakeLookPath("docker", "docker-compose"),
		ProbeComposePlugin: func(ctx context.Context) error { return errors.New("unknown command") },
	}

	orch, err := c.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OrchestratorLegacy, orch)
}

// TestResolveNoOrchestrator is dependency check B failing outright:
// docker exists but neither compose form does.
func TestResolveNoOrchestrator(t *testing.T) {
	c := &Checker{
		LookPath:           fakeLookPath("docker"),
		ProbeComposePlugin: func(ctx context.Context) error { return errors.New("unknown command") },
	}

	_, err := c.Resolve(context.Background())
	requireRuntimeUnavailable(t, err)
}

// TestResolveDaemonPing is dependency check C: a failing ping propagates
// as-is (it is already a CLIError from the docker package).
func TestResolveDaemonPing(t *testing.T) {
	pingErr := model.NewCLIError(model.ExitRuntimeUnavailable, "daemon down")
	c := &Checker{
		LookPath:           fakeLookPath("docker"),
		ProbeComposePlugin: func(ctx context.Context) error { return nil },
		PingDaemon:         func(ctx context.Context) error { return pingErr },
	}

	_, err := c.Resolve(context.Background())
	require.ErrorIs(t, err, pingErr)
}

// TestResolveNilPingSkipsCheckC verifies the daemon check is optional.
func TestResolveNilPingSkipsCheckC(t *testing.T) {
	c := &Checker{
		LookPath:           fakeLookPath("docker"),
		ProbeComposePlugin: func(ctx context.Context) error { return nil },
		PingDaemon:         nil,
	}

	orch, err := c.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OrchestratorPlugin, orch)
}

// TestHasRuntime verifies the dev sequencer's soft runtime probe.
func TestHasRuntime(t *testing.T) {
	c := &Checker{LookPath: fakeLookPath("docker")}
	assert.True(t, c.HasRuntime())

	c = &Checker{LookPath: fakeLookPath()}
	assert.False(t, c.HasRuntime())
}
