package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/docker"
	"github.com/biblioteca-api/stackup/internal/execx"
	"github.com/biblioteca-api/stackup/internal/model"
)

// Development sequences the local, non-containerized run of the
// application: dependency install, optional cache container, foreground
// server with live reload.
//
// The cache step is deliberately soft — whatever happens there, the
// server still launches. The install step is checked: running a dev
// server against half-installed dependencies produces far more confusing
// failures than stopping here.
type Development struct {
	// Exec runs the install and server commands attached to the terminal.
	Exec execx.Runner

	// Cache manages the auxiliary cache container. Ignored when nil or
	// when the config disables the cache.
	Cache docker.CacheManager

	// HasRuntime reports whether a container runtime binary exists on
	// this host. Without one, the cache step is skipped with a notice.
	HasRuntime func() bool

	// Config supplies the install/server argvs and dev endpoints.
	Config *config.Config

	// SkipCache forces the cache step off (the --no-cache flag).
	SkipCache bool

	// SkipInstall skips the dependency install step (the --no-install
	// flag), for iterating when the environment is already set up.
	SkipInstall bool

	// Out receives all user-facing output. Defaults to os.Stdout.
	Out io.Writer

	// Log receives diagnostics and warnings.
	Log *logrus.Logger
}

// Run executes the development bootstrap sequence. It blocks inside the
// final server launch until the server process is terminated; the
// server's exit status becomes the process exit status.
func (d *Development) Run(ctx context.Context) error {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Step 1: Install dependencies from the declared manifest.
	if d.SkipInstall {
		log.Debug("dependency install skipped")
	} else {
		fmt.Fprintf(out, "Installing dependencies (%s)...\n",
			strings.Join(d.Config.Dev.Install, " "))
		if res := d.Exec.Run(ctx, d.Config.Dev.Install); !res.Ok() {
			return model.WrapCLIError(model.ExitInstallFailed,
				"dependency install failed", res.Err)
		}
	}

	// Step 2: Optional cache container. This step never aborts the
	// sequence: "already running" is the expected steady state, and any
	// other failure just means the server runs without a managed cache.
	d.ensureCache(ctx, out, log)

	// Step 3: Announce the dev endpoints, then launch the server in the
	// foreground. This call does not return until the server process is
	// terminated.
	fmt.Fprintln(out)
	for _, ep := range d.Config.Dev.Endpoints {
		fmt.Fprintf(out, "  %s: %s\n", ep.Name, ep.URL)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Starting dev server (%s) — Ctrl-C to stop\n",
		strings.Join(d.Config.Dev.Server, " "))

	res := d.Exec.Run(ctx, d.Config.Dev.Server)
	if res.Code != 0 {
		return model.WrapCLIError(model.ExitCode(res.Code),
			fmt.Sprintf("dev server exited with status %d", res.Code), res.Err)
	}
	return nil
}

// ensureCache runs the optional cache container step and reports the
// outcome to the user. All failure modes degrade to a printed fallback
// line; execution continues regardless of which branch occurred.
func (d *Development) ensureCache(ctx context.Context, out io.Writer, log *logrus.Logger) {
	spec := d.Config.Dev.Cache

	if d.SkipCache || !d.Config.CacheEnabled() || d.Cache == nil {
		log.Debug("cache container step disabled")
		return
	}

	if d.HasRuntime != nil && !d.HasRuntime() {
		fmt.Fprintf(out, "No container runtime found — skipping the %q container. "+
			"Expecting a cache at localhost:%d.\n", spec.Name, spec.Port)
		return
	}

	outcome, err := d.Cache.Ensure(ctx, spec)
	switch outcome {
	case model.CacheStarted:
		fmt.Fprintf(out, "Started cache container %q on port %d.\n", spec.Name, spec.Port)
	case model.CacheRestarted:
		fmt.Fprintf(out, "Restarted existing cache container %q.\n", spec.Name)
	case model.CacheAlreadyRunning:
		fmt.Fprintf(out, "Cache container %q is already running — reusing it.\n", spec.Name)
	case model.CacheUnavailable:
		log.Warnf("could not start cache container %q: %v", spec.Name, err)
		fmt.Fprintf(out, "Continuing without a managed cache — the server will use localhost:%d if something is listening there.\n",
			spec.Port)
	default:
		log.Warnf("unexpected cache outcome %q", outcome)
	}
}
