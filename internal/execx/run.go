// Package execx runs external commands attached to the terminal.
//
// The development sequencer uses it for the dependency install step and
// the foreground server launch: both want the child's output streamed
// live and, for the server, stdin connected so the process behaves
// exactly as if the user had started it by hand.
package execx

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Result carries the exit code of a finished command alongside the raw
// error. Code is 0 on success; 124 flags a context deadline, matching
// the convention of coreutils timeout(1).
type Result struct {
	Code int
	Err  error
}

// Ok reports whether the command exited successfully.
func (r Result) Ok() bool {
	return r.Code == 0 && r.Err == nil
}

// Runner executes argv-style commands. The development sequencer depends
// on this interface so its step ordering can be asserted with a fake.
type Runner interface {
	// Run executes the command described by argv (argv[0] is the binary)
	// and blocks until it exits.
	Run(ctx context.Context, argv []string) Result
}

// Attached is a Runner whose children inherit the configured streams.
// The zero value attaches to the current process's stdio.
type Attached struct {
	// Stdin, Stdout, Stderr default to the os counterparts when nil.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the working directory for every command; empty keeps the
	// current directory.
	Dir string

	// Log receives a debug line with the command before each run.
	Log *logrus.Logger
}

// Run implements Runner.
func (a *Attached) Run(ctx context.Context, argv []string) Result {
	if len(argv) == 0 {
		return Result{Code: 1, Err: errors.New("empty command")}
	}

	if a.Log != nil {
		a.Log.Debugf("exec: %s", strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = a.Dir
	cmd.Stdin = a.Stdin
	cmd.Stdout = a.Stdout
	cmd.Stderr = a.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	return Result{Code: exitCode(ctx, err), Err: err}
}

// exitCode maps a Run error to a numeric exit code: the child's own code
// when it ran and failed, 124 on deadline, 1 for anything else (such as
// a binary that could not be started at all).
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 124
	}
	return 1
}
