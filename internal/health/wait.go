// Package health implements the post-startup readiness wait.
//
// The original launcher slept a fixed 10 seconds after `compose up` and
// hoped the services were ready. stackup replaces that with an HTTP poll
// against the API's health endpoint when one is configured, and keeps the
// fixed sleep as the fallback when it is not — the compose file may
// describe a stack with no health route at all.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biblioteca-api/stackup/internal/config"
)

// Waiter blocks until the stack is considered ready (or the wait budget
// runs out). Both implementations honor context cancellation, so Ctrl-C
// during the wait aborts the sequence.
type Waiter interface {
	// Wait blocks until ready. A non-nil error means readiness could not
	// be confirmed; the production sequencer treats that as a warning,
	// not a fatal condition.
	Wait(ctx context.Context) error

	// Describe returns a one-line human description of the wait,
	// printed before it begins.
	Describe() string
}

// Poller polls an HTTP endpoint until it answers 200 OK.
type Poller struct {
	// URL is the health endpoint, e.g. "http://localhost/health".
	URL string

	// Interval is the pause between attempts.
	Interval time.Duration

	// Timeout bounds the whole poll.
	Timeout time.Duration

	// Client is the HTTP client used for probes. Its per-request timeout
	// is capped at Interval in NewPoller so one hanging probe cannot eat
	// the whole budget.
	Client *http.Client

	// Log receives a debug line per failed attempt.
	Log *logrus.Logger
}

// NewPoller creates a Poller for the given health configuration.
func NewPoller(h config.Health, log *logrus.Logger) *Poller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{
		URL:      h.URL,
		Interval: h.Interval,
		Timeout:  h.Timeout,
		Client:   &http.Client{Timeout: h.Interval},
		Log:      log,
	}
}

// Wait implements Waiter. It probes immediately, then on every interval
// tick, until a probe succeeds, the timeout elapses, or ctx is cancelled.
func (p *Poller) Wait(ctx context.Context) error {
	deadline := time.Now().Add(p.Timeout)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	attempt := 0
	for {
		attempt++
		if p.probe(ctx) {
			p.Log.Debugf("health probe succeeded after %d attempt(s)", attempt)
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("health endpoint %s did not answer 200 within %s", p.URL, p.Timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// probe performs a single GET against the health URL and reports whether
// it answered 200 OK. All errors (connection refused while the stack is
// still booting, non-200 statuses) count as "not ready yet".
func (p *Poller) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		p.Log.Debugf("health probe: bad request: %v", err)
		return false
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Log.Debugf("health probe: %v", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		p.Log.Debugf("health probe: status %d", resp.StatusCode)
		return false
	}
	return true
}

// Describe implements Waiter.
func (p *Poller) Describe() string {
	return fmt.Sprintf("waiting for %s (up to %s)", p.URL, p.Timeout)
}

// FixedWait pauses for a constant duration. This reproduces the original
// launcher's blind sleep and is used only when no health URL is configured.
type FixedWait struct {
	// Duration is the full pause length.
	Duration time.Duration
}

// Wait implements Waiter. The sleep is cancellable via ctx.
func (w *FixedWait) Wait(ctx context.Context) error {
	timer := time.NewTimer(w.Duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Describe implements Waiter.
func (w *FixedWait) Describe() string {
	return fmt.Sprintf("waiting %s for services to initialize", w.Duration)
}

// ForConfig selects the waiter for a configuration: a Poller when a
// health URL is set, otherwise the fixed fallback wait.
func ForConfig(cfg *config.Config, log *logrus.Logger) Waiter {
	if cfg.Health.URL != "" {
		return NewPoller(cfg.Health, log)
	}
	return &FixedWait{Duration: cfg.Wait}
}
