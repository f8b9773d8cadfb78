package command

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrInvalidEndpoint reports an endpoint string that names no known transport.
var ErrInvalidEndpoint = errors.New("invalid command endpoint")

// EndpointKind identifies the transport an Endpoint names.
type EndpointKind int

const (
	// EndpointStdio uses the process's inherited standard streams. The host
	// shim holds the other ends of the pipes.
	EndpointStdio EndpointKind = iota
	// EndpointUnix dials a Unix domain socket. Honored only on platforms
	// with Unix socket support; elsewhere it degrades to a fail-fast client.
	EndpointUnix
	// EndpointTCP dials a TCP socket.
	EndpointTCP
	// EndpointUnavailable marks a runtime that intentionally exposes no
	// command channel.
	EndpointUnavailable
)

// Endpoint describes how a client reaches the host command channel. The zero
// value is the stdio endpoint.
type Endpoint struct {
	Kind    EndpointKind
	Address string // socket path for EndpointUnix, host:port for EndpointTCP
}

// StdioEndpoint returns the default stdio endpoint.
func StdioEndpoint() Endpoint {
	return Endpoint{Kind: EndpointStdio}
}

// TCPEndpoint returns an endpoint dialing addr over TCP.
func TCPEndpoint(addr string) Endpoint {
	return Endpoint{Kind: EndpointTCP, Address: addr}
}

// UnixEndpoint returns an endpoint dialing the Unix socket at path.
func UnixEndpoint(path string) Endpoint {
	return Endpoint{Kind: EndpointUnix, Address: path}
}

// UnavailableEndpoint returns the marker endpoint for disabled channels.
func UnavailableEndpoint() Endpoint {
	return Endpoint{Kind: EndpointUnavailable}
}

// ParseEndpoint parses the configuration grammar for command endpoints:
// "stdio", "disabled"/"unavailable", "tcp://<host:port>", and
// "unix://<path>". Keywords are case-insensitive. Any other input fails with
// an error wrapping ErrInvalidEndpoint that carries the input verbatim.
func ParseEndpoint(s string) (Endpoint, error) {
	value := strings.TrimSpace(s)
	if strings.EqualFold(value, "stdio") {
		return Endpoint{Kind: EndpointStdio}, nil
	}
	if strings.EqualFold(value, "disabled") || strings.EqualFold(value, "unavailable") {
		return Endpoint{Kind: EndpointUnavailable}, nil
	}
	if path, ok := strings.CutPrefix(value, "unix://"); ok {
		return Endpoint{Kind: EndpointUnix, Address: path}, nil
	}
	if addr, ok := strings.CutPrefix(value, "tcp://"); ok {
		return Endpoint{Kind: EndpointTCP, Address: addr}, nil
	}
	return Endpoint{}, fmt.Errorf("%w: %s", ErrInvalidEndpoint, value)
}

// String renders the endpoint in the same grammar ParseEndpoint accepts.
func (e Endpoint) String() string {
	switch e.Kind {
	case EndpointStdio:
		return "stdio"
	case EndpointUnix:
		return "unix://" + e.Address
	case EndpointTCP:
		return "tcp://" + e.Address
	case EndpointUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("endpoint(kind=%d)", int(e.Kind))
	}
}

// unixSocketsSupported is the capability flag behind EndpointUnix. It is
// consulted once at connect time rather than compiling the variant out.
func unixSocketsSupported() bool {
	switch runtime.GOOS {
	case "windows", "plan9", "js", "wasip1":
		return false
	default:
		return true
	}
}
