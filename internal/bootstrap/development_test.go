package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/execx"
	"github.com/biblioteca-api/stackup/internal/model"
)

// fakeExec records each executed argv and returns the armed results in
// order. It satisfies execx.Runner.
type fakeExec struct {
	commands [][]string
	results  []execx.Result
}

func (f *fakeExec) Run(ctx context.Context, argv []string) execx.Result {
	f.commands = append(f.commands, argv)
	if len(f.results) > 0 {
		res := f.results[0]
		f.results = f.results[1:]
		return res
	}
	return execx.Result{}
}

// fakeCache satisfies docker.CacheManager with a canned outcome.
type fakeCache struct {
	called  bool
	outcome model.CacheOutcome
	err     error
}

func (f *fakeCache) Ensure(ctx context.Context, spec config.Cache) (model.CacheOutcome, error) {
	f.called = true
	return f.outcome, f.err
}

// newDevelopment assembles a dev sequencer over fakes with the default
// configuration and a captured output buffer.
func newDevelopment(exec *fakeExec, cache *fakeCache) (*Development, *bytes.Buffer) {
	var out bytes.Buffer
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	return &Development{
		Exec:       exec,
		Cache:      cache,
		HasRuntime: func() bool { return true },
		Config:     config.Default(),
		Out:        &out,
		Log:        log,
	}, &out
}

// TestDevelopmentRunOrder verifies the three-step sequence: install,
// cache, then the foreground server as the final blocking step.
func TestDevelopmentRunOrder(t *testing.T) {
	exec := &fakeExec{}
	cache := &fakeCache{outcome: model.CacheStarted}
	seq, out := newDevelopment(exec, cache)

	require.NoError(t, seq.Run(context.Background()))

	require.Len(t, exec.commands, 2)
	assert.Equal(t, config.Default().Dev.Install, exec.commands[0])
	assert.Equal(t, config.Default().Dev.Server, exec.commands[1])
	assert.True(t, cache.called, "the cache step runs between install and server")

	s := out.String()
	assert.Contains(t, s, "http://localhost:8000")
	assert.Contains(t, s, "http://localhost:8000/docs")
	assert.Contains(t, s, `Started cache container "biblioteca-redis" on port 6379.`)
}

// TestDevelopmentInstallFailureAborts verifies a failed install stops
// the sequence: no cache step, no server.
func TestDevelopmentInstallFailureAborts(t *testing.T) {
	exec := &fakeExec{results: []execx.Result{{Code: 1, Err: errors.New("pip exploded")}}}
	cache := &fakeCache{outcome: model.CacheStarted}
	seq, _ := newDevelopment(exec, cache)

	err := seq.Run(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInstallFailed, cliErr.Code)

	assert.Len(t, exec.commands, 1, "only the install may have run")
	assert.False(t, cache.called)
}

// TestDevelopmentCacheNeverAborts covers the core guarantee of the
// cache step: whatever it reports, the server still launches.
func TestDevelopmentCacheNeverAborts(t *testing.T) {
	tests := []struct {
		name    string
		outcome model.CacheOutcome
		err     error
		wantMsg string
	}{
		{
			name:    "already running is benign",
			outcome: model.CacheAlreadyRunning,
			wantMsg: "already running",
		},
		{
			name:    "stopped instance is restarted",
			outcome: model.CacheRestarted,
			wantMsg: "Restarted existing cache container",
		},
		{
			name:    "hard failure degrades to a fallback line",
			outcome: model.CacheUnavailable,
			err:     errors.New("docker run failed"),
			wantMsg: "Continuing without a managed cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExec{}
			seq, out := newDevelopment(exec, &fakeCache{outcome: tt.outcome, err: tt.err})

			require.NoError(t, seq.Run(context.Background()))
			assert.Contains(t, out.String(), tt.wantMsg)

			// The final executed command must be the server launch.
			require.NotEmpty(t, exec.commands)
			last := exec.commands[len(exec.commands)-1]
			assert.Equal(t, "uvicorn", last[0])
		})
	}
}

// TestDevelopmentNoRuntimeSkipsCache verifies the conditional: without a
// container runtime the cache step is skipped with a notice, and the
// rest of the sequence is unaffected.
func TestDevelopmentNoRuntimeSkipsCache(t *testing.T) {
	exec := &fakeExec{}
	cache := &fakeCache{outcome: model.CacheStarted}
	seq, out := newDevelopment(exec, cache)
	seq.HasRuntime = func() bool { return false }

	require.NoError(t, seq.Run(context.Background()))
	assert.False(t, cache.called)
	assert.Contains(t, out.String(), "No container runtime found")
	assert.Len(t, exec.commands, 2)
}

// TestDevelopmentSkipFlags verifies --no-cache and --no-install.
func TestDevelopmentSkipFlags(t *testing.T) {
	exec := &fakeExec{}
	cache := &fakeCache{outcome: model.CacheStarted}
	seq, _ := newDevelopment(exec, cache)
	seq.SkipCache = true
	seq.SkipInstall = true

	require.NoError(t, seq.Run(context.Background()))
	assert.False(t, cache.called)
	require.Len(t, exec.commands, 1, "only the server runs")
	assert.True(t, strings.HasPrefix(strings.Join(exec.commands[0], " "), "uvicorn"))
}

// TestDevelopmentServerExitCodePropagates verifies the foreground
// server's exit status becomes the command's exit status.
func TestDevelopmentServerExitCodePropagates(t *testing.T) {
	exec := &fakeExec{results: []execx.Result{
		{}, // install succeeds
		{Code: 3, Err: errors.New("exit status 3")},
	}}
	seq, _ := newDevelopment(exec, &fakeCache{outcome: model.CacheAlreadyRunning})

	err := seq.Run(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitCode(3), cliErr.Code)
}
