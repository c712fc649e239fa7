package port

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsPortAvailableTCP verifies both answers for TCP: a port held by a
// live listener is busy, and becomes available once released.
func TestIsPortAvailableTCP(t *testing.T) {
	// Grab an OS-assigned port and keep it bound.
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)

	portNum := listener.Addr().(*net.TCPAddr).Port
	s := NewScanner()

	assert.False(t, s.IsPortAvailable(portNum, "tcp"),
		"a bound port must report as unavailable")

	require.NoError(t, listener.Close())
	assert.True(t, s.IsPortAvailable(portNum, "tcp"),
		"a released port must report as available")
}

// TestIsPortAvailableUDP verifies the ListenPacket path used for UDP.
func TestIsPortAvailableUDP(t *testing.T) {
	conn, err := net.ListenPacket("udp", ":0")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	portNum := conn.LocalAddr().(*net.UDPAddr).Port
	s := NewScanner()

	assert.False(t, s.IsPortAvailable(portNum, "udp"))
}

// TestIsPortAvailableUnknownProtocol verifies the fail-safe: an unknown
// protocol is treated as unavailable rather than silently passing.
func TestIsPortAvailableUnknownProtocol(t *testing.T) {
	s := NewScanner()
	assert.False(t, s.IsPortAvailable(8080, "sctp"))
}
