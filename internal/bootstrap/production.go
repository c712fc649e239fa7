package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biblioteca-api/stackup/internal/compose"
	"github.com/biblioteca-api/stackup/internal/config"
	"github.com/biblioteca-api/stackup/internal/health"
)

// PortScanner checks host port availability. Satisfied by *port.Scanner;
// declared here so the sequencer tests can inject a fake.
type PortScanner interface {
	IsPortAvailable(port int, protocol string) bool
}

// Production sequences the steps that bring the full containerized stack
// online: build, detached start, readiness wait, status report, summary.
// The dependency checks run before the sequencer is constructed (see
// preflight.Resolve); everything that happens here assumes the tools
// exist.
//
// All collaborators are interfaces or writers so the strict step ordering
// is assertable in tests without a Docker daemon.
type Production struct {
	// Compose drives the orchestration tool.
	Compose compose.Runner

	// Waiter blocks after `up` until the stack is considered ready.
	Waiter health.Waiter

	// Scanner pre-checks endpoint host ports before the build. Nil
	// disables the check.
	Scanner PortScanner

	// Config supplies endpoints and summary content.
	Config *config.Config

	// Services are the declared compose service names, shown before the
	// build so the user knows what is about to come up. May be empty.
	Services []string

	// Out receives all user-facing output. Defaults to os.Stdout.
	Out io.Writer

	// Log receives diagnostics and warnings.
	Log *logrus.Logger
}

// Run executes the production bootstrap sequence. Steps run strictly in
// order and every external invocation is checked — a failed build or
// start aborts with a typed error instead of masking a broken deployment
// as "running".
func (p *Production) Run(ctx context.Context) error {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Step 1: Announce what is about to start.
	if len(p.Services) > 0 {
		fmt.Fprintf(out, "Starting stack %q (%s)\n",
			p.Config.Project, strings.Join(p.Services, ", "))
	} else {
		fmt.Fprintf(out, "Starting stack %q\n", p.Config.Project)
	}

	// Step 2: Warn about endpoint host ports that are already bound.
	// `compose up` would fail late on these with a bind error; naming
	// the port up front saves a full build first.
	if p.Scanner != nil {
		for _, ep := range p.Config.Endpoints {
			hostPort := ep.HostPort()
			if hostPort == 0 {
				continue
			}
			if !p.Scanner.IsPortAvailable(hostPort, "tcp") {
				log.Warnf("port %d (%s) is already in use — %s may fail to bind",
					hostPort, ep.Name, ep.Name)
			}
		}
	}

	// Step 3: Build all service images. Checked: a broken image build
	// must not be papered over by a successful "up" of stale images.
	fmt.Fprintln(out, "Building services...")
	if err := p.Compose.Build(ctx); err != nil {
		return err
	}

	// Step 4: Start the service group detached.
	fmt.Fprintln(out, "Starting services...")
	if err := p.Compose.Up(ctx); err != nil {
		return err
	}

	// Step 5: Readiness wait. A timeout here is a warning, not an
	// error — the services are started, they may just need longer, and
	// the status report that follows shows their actual state.
	fmt.Fprintf(out, "%s\n", p.Waiter.Describe())
	if err := p.Waiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnf("readiness wait gave up: %v", err)
	}

	// Step 6: Status report, verbatim from the orchestration tool.
	fmt.Fprintln(out)
	if err := p.Compose.Ps(ctx); err != nil {
		return err
	}

	// Step 7: Summary — endpoint URLs and follow-up commands.
	p.printSummary(out)
	return nil
}

// printSummary prints the endpoint URLs and the two follow-up hints the
// original launcher ended with (view logs, stop services).
func (p *Production) printSummary(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Stack %q is up.\n", p.Config.Project)
	fmt.Fprintln(out)

	// Align the URL column on the longest endpoint name.
	width := 0
	for _, ep := range p.Config.Endpoints {
		if len(ep.Name) > width {
			width = len(ep.Name)
		}
	}

	for _, ep := range p.Config.Endpoints {
		if ep.Note != "" {
			fmt.Fprintf(out, "  %-*s  %s  (%s)\n", width+1, ep.Name+":", ep.URL, ep.Note)
		} else {
			fmt.Fprintf(out, "  %-*s  %s\n", width+1, ep.Name+":", ep.URL)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Follow-up:")
	fmt.Fprintln(out, "  stackup logs -f    tail service logs")
	fmt.Fprintln(out, "  stackup down       stop and remove the stack")
}
