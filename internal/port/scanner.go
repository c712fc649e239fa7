// Package port implements host port availability scanning.
//
// Before `stackup up` hands the host ports over to the orchestration
// tool, the scanner checks whether any endpoint port is already bound by
// another process. An occupied port makes `compose up` fail late with a
// confusing bind error; the pre-check turns that into an early warning
// naming the port.
package port

import (
	"fmt"
	"net"
)

// Scanner checks whether specific ports are available on the host machine.
//
// It asks the operating system directly via net.Listen / net.ListenPacket,
// which is more reliable than parsing /proc/net/* or shelling out to
// `lsof`/`ss` (both of which may need elevated permissions).
//
// The struct is currently stateless, but is defined as a struct so future
// options (bind address, timeout) can be added without breaking the API,
// and so it is injectable as a dependency in the sequencer tests.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable checks whether a single port is free on the host.
//
// For TCP it attempts net.Listen(":port"); for UDP, net.ListenPacket.
// A successful bind means the port is free — the listener is closed
// immediately. The bind targets all interfaces (":port" rather than
// "127.0.0.1:port") because Docker publishes on 0.0.0.0 and the check
// must cover the same address space.
//
// Returns true when the port is free, false when it is in use or the
// protocol is unknown.
func (s *Scanner) IsPortAvailable(port int, protocol string) bool {
	addr := fmt.Sprintf(":%d", port)

	switch protocol {
	case "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = listener.Close() }()
		return true

	case "udp":
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = conn.Close() }()
		return true

	default:
		// Unknown protocol — treat as unavailable to fail safe.
		return false
	}
}
