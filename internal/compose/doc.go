// Package compose wraps the external orchestration tool.
//
// ExecRunner shells out to `docker compose` (or the legacy
// `docker-compose` binary) with the configured files and project name,
// streaming output to the terminal. Manifest gives stackup a read-only
// view of the declared services for reporting; all interpretation of the
// compose file beyond the service map is delegated to the tool itself.
package compose
