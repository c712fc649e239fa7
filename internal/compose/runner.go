package compose

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biblioteca-api/stackup/internal/model"
)

// Runner abstracts the compose invocations the sequencers and operational
// commands need. The production sequencer depends on this interface rather
// than on ExecRunner directly, so step ordering can be asserted with a
// fake in tests.
type Runner interface {
	// Build runs the compose build subcommand for all declared files.
	Build(ctx context.Context) error

	// Up starts the service group in detached mode (up -d).
	Up(ctx context.Context) error

	// Ps prints the compose status table verbatim to the runner's stdout.
	Ps(ctx context.Context) error

	// Logs streams service logs. An empty service selects all services.
	Logs(ctx context.Context, service string, follow bool) error

	// Down stops and removes the service group, optionally with volumes.
	Down(ctx context.Context, removeVolumes bool) error
}

// ExecRunner runs the orchestration tool as a child process. Output is
// streamed to the attached writers rather than captured: build and up
// produce long, progress-heavy output that users need to see live.
type ExecRunner struct {
	// Bin is the orchestrator argv prefix, resolved by the preflight
	// check: ["docker", "compose"] for the plugin form, or
	// ["docker-compose"] for the legacy standalone binary.
	Bin []string

	// Dir is the working directory for every invocation. Compose
	// resolves relative paths in YAML files against it.
	Dir string

	// Files are passed in order as -f flags. Later files override
	// earlier ones, per compose merge semantics.
	Files []string

	// Project is passed as -p, which names the compose project and
	// therefore the label value on every created container.
	Project string

	// Env holds extra environment variables appended to os.Environ().
	Env map[string]string

	// DryRun prints each command line instead of executing it.
	DryRun bool

	// Stdout and Stderr receive the child process output. They default
	// to os.Stdout / os.Stderr in NewExecRunner.
	Stdout io.Writer
	Stderr io.Writer

	// Log receives a debug line with the full command before each run.
	Log *logrus.Logger
}

// NewExecRunner creates an ExecRunner wired to the current process's
// stdio. bin must be a non-empty argv prefix from the preflight check.
func NewExecRunner(bin []string, dir string, files []string, project string, log *logrus.Logger) *ExecRunner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ExecRunner{
		Bin:     bin,
		Dir:     dir,
		Files:   files,
		Project: project,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Log:     log,
	}
}

// Build implements Runner.
func (r *ExecRunner) Build(ctx context.Context) error {
	return r.run(ctx, "build")
}

// Up implements Runner. The -d flag starts the service group detached so
// the sequencer regains control immediately after the containers launch.
func (r *ExecRunner) Up(ctx context.Context) error {
	return r.run(ctx, "up", "-d")
}

// Ps implements Runner. The output is not parsed — it is shown to the
// user exactly as the orchestration tool prints it.
func (r *ExecRunner) Ps(ctx context.Context) error {
	return r.run(ctx, "ps")
}

// Logs implements Runner.
func (r *ExecRunner) Logs(ctx context.Context, service string, follow bool) error {
	args := []string{"logs"}
	if follow {
		args = append(args, "-f")
	}
	if service != "" {
		args = append(args, service)
	}
	return r.run(ctx, args...)
}

// Down implements Runner. When removeVolumes is true, -v also removes
// named and anonymous volumes for a complete cleanup.
func (r *ExecRunner) Down(ctx context.Context, removeVolumes bool) error {
	args := []string{"down"}
	if removeVolumes {
		args = append(args, "-v")
	}
	return r.run(ctx, args...)
}

// commandLine assembles the full argv for a compose subcommand:
// orchestrator prefix, -f flags for every file, -p project, then the
// subcommand and its arguments.
func (r *ExecRunner) commandLine(args ...string) []string {
	full := make([]string, 0, len(r.Bin)+len(r.Files)*2+len(args)+2)
	full = append(full, r.Bin...)
	for _, f := range r.Files {
		full = append(full, "-f", f)
	}
	if r.Project != "" {
		full = append(full, "-p", r.Project)
	}
	full = append(full, args...)
	return full
}

// run executes one compose subcommand as a child process with output
// streamed to the attached writers. A non-zero exit becomes a CLIError
// with ExitComposeFailed — the original launcher ignored these statuses,
// which could mask a broken deployment as "running".
func (r *ExecRunner) run(ctx context.Context, args ...string) error {
	full := r.commandLine(args...)

	if r.DryRun {
		// Dry-run prints the command the way a shell trace would,
		// prefixed with "+", and executes nothing.
		fmt.Fprintln(r.Stderr, "+ "+strings.Join(full, " "))
		return nil
	}

	r.Log.Debugf("exec: %s", strings.Join(full, " "))

	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	// Inherit the current environment and append the extras.
	// os.Environ() returns a copy, so this process is unaffected.
	cmd.Env = os.Environ()
	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(model.ExitComposeFailed,
			fmt.Sprintf("%s %s failed", strings.Join(r.Bin, " "), args[0]), err)
	}
	return nil
}
