// Package model defines the domain types and value objects for the
// stackup CLI.
//
// This package contains pure data structures with no external dependencies.
// Endpoints, container info, and cache outcomes are transient
// representations built from configuration and Docker API queries at
// runtime — there are no persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
