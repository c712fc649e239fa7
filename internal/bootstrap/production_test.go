package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/model"
)

// fakeCompose records every invocation in order and fails the steps the
// test arms. It satisfies compose.Runner.
type fakeCompose struct {
	calls    *[]string
	buildErr error
	upErr    error
	psErr    error
}

func (f *fakeCompose) Build(ctx context.Context) error {
	*f.calls = append(*f.calls, "build")
	return f.buildErr
}

func (f *fakeCompose) Up(ctx context.Context) error {
	*f.calls = append(*f.calls, "up")
	return f.upErr
}

func (f *fakeCompose) Ps(ctx context.Context) error {
	*f.calls = append(*f.calls, "ps")
	return f.psErr
}

func (f *fakeCompose) Logs(ctx context.Context, service string, follow bool) error {
	*f.calls = append(*f.calls, "logs")
	return nil
}

func (f *fakeCompose) Down(ctx context.Context, removeVolumes bool) error {
	*f.calls = append(*f.calls, "down")
	return nil
}

// fakeWaiter records the wait in the same call log as the compose fake,
// so the test can assert the full step order in one slice.
type fakeWaiter struct {
	calls *[]string
	err   error
}

func (f *fakeWaiter) Wait(ctx context.Context) error {
	*f.calls = append(*f.calls, "wait")
	return f.err
}

func (f *fakeWaiter) Describe() string { return "waiting (test)" }

// fakeScanner reports the configured ports as busy.
type fakeScanner struct {
	busy map[int]bool
}

func (f *fakeScanner) IsPortAvailable(port int, protocol string) bool {
	return !f.busy[port]
}

// newProduction assembles a sequencer over fakes sharing one call log.
func newProduction(calls *[]string, c *fakeCompose, w *fakeWaiter) (*Production, *bytes.Buffer) {
	c.calls = calls
	w.calls = calls

	var out bytes.Buffer
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	return &Production{
		Compose:  c,
		Waiter:   w,
		Scanner:  &fakeScanner{},
		Config:   config.Default(),
		Services: []string{"api", "grafana", "prometheus"},
		Out:      &out,
		Log:      log,
	}, &out
}

// TestProductionRunOrder is the core sequencing contract: build, then
// detached start, then exactly one readiness wait, then exactly one
// status query, in that order, ending with the summary.
func TestProductionRunOrder(t *testing.T) {
	var calls []string
	seq, out := newProduction(&calls, &fakeCompose{}, &fakeWaiter{})

	require.NoError(t, seq.Run(context.Background()))

	assert.Equal(t, []string{"build", "up", "wait", "ps"}, calls)
	assert.Contains(t, out.String(), `Stack "biblioteca" is up.`)
}

// TestProductionSummaryURLs verifies the five fixed endpoint URLs are
// printed verbatim, including the dashboard's default credentials note.
func TestProductionSummaryURLs(t *testing.T) {
	var calls []string
	seq, out := newProduction(&calls, &fakeCompose{}, &fakeWaiter{})

	require.NoError(t, seq.Run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "http://localhost\n")
	assert.Contains(t, s, "http://localhost/docs")
	assert.Contains(t, s, "http://localhost:9090")
	assert.Contains(t, s, "http://localhost:3000")
	assert.Contains(t, s, "login: admin / admin")
	assert.Contains(t, s, "stackup logs -f")
	assert.Contains(t, s, "stackup down")
}

// TestProductionBuildFailureAborts verifies a failed build stops the
// sequence before the start step — the original launcher would have
// carried on and masked the breakage.
func TestProductionBuildFailureAborts(t *testing.T) {
	var calls []string
	buildErr := model.NewCLIError(model.ExitComposeFailed, "docker compose build failed")
	seq, _ := newProduction(&calls, &fakeCompose{buildErr: buildErr}, &fakeWaiter{})

	err := seq.Run(context.Background())
	require.ErrorIs(t, err, buildErr)
	assert.Equal(t, []string{"build"}, calls, "nothing may run after a failed build")
}

// TestProductionUpFailureAborts verifies a failed start stops the
// sequence before the wait and status steps.
func TestProductionUpFailureAborts(t *testing.T) {
	var calls []string
	upErr := model.NewCLIError(model.ExitComposeFailed, "docker compose up failed")
	seq, _ := newProduction(&calls, &fakeCompose{upErr: upErr}, &fakeWaiter{})

	err := seq.Run(context.Background())
	require.ErrorIs(t, err, upErr)
	assert.Equal(t, []string{"build", "up"}, calls)
}

// TestProductionWaitTimeoutIsNotFatal verifies an exhausted readiness
// wait degrades to a warning: the status report and summary still run,
// because the services are started and their real state is about to be
// shown anyway.
func TestProductionWaitTimeoutIsNotFatal(t *testing.T) {
	var calls []string
	seq, out := newProduction(&calls,
		&fakeCompose{},
		&fakeWaiter{err: errors.New("health endpoint never answered")},
	)

	require.NoError(t, seq.Run(context.Background()))
	assert.Equal(t, []string{"build", "up", "wait", "ps"}, calls)
	assert.Contains(t, out.String(), `Stack "biblioteca" is up.`)
}

// TestProductionCancelledWaitIsFatal distinguishes Ctrl-C from a wait
// timeout: cancellation must abort instead of continuing to the report.
func TestProductionCancelledWaitIsFatal(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	seq, _ := newProduction(&calls, &fakeCompose{}, &fakeWaiter{err: context.Canceled})

	cancel()
	err := seq.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, calls, "ps")
}

// TestProductionBusyPortWarning verifies occupied endpoint ports are
// surfaced as warnings before the build, without aborting the sequence.
func TestProductionBusyPortWarning(t *testing.T) {
	var calls []string
	seq, _ := newProduction(&calls, &fakeCompose{}, &fakeWaiter{})

	var warnings bytes.Buffer
	log := logrus.New()
	log.SetOutput(&warnings)
	seq.Log = log
	seq.Scanner = &fakeScanner{busy: map[int]bool{3000: true}}

	require.NoError(t, seq.Run(context.Background()))
	assert.Contains(t, warnings.String(), "port 3000")
	assert.Equal(t, []string{"build", "up", "wait", "ps"}, calls,
		"a busy port is a warning, not an abort")
}
