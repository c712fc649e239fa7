// Package docker wraps the Docker Engine SDK for the direct-to-daemon
// parts of stackup: preflight daemon checks, status listing via compose
// project labels, and the dev cache container lifecycle.
package docker
