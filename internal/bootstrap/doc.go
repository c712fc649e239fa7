// Package bootstrap implements the two startup sequencers.
//
// Production brings the containerized stack up (build, detached start,
// readiness wait, status, summary); Development prepares a local run
// (install, optional cache container, foreground server). Both are
// single linear passes with no retries; their collaborators are
// interfaces so the fixed step ordering is assertable in tests.
package bootstrap
