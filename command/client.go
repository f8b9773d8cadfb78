package command

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"time"
)

// DefaultTimeout bounds how long Send waits for a response line when no
// explicit timeout was configured.
const DefaultTimeout = 30 * time.Second

// Client issues commands to the host over a single transport established at
// construction. A Client is safe to share between goroutines; every holder
// uses the same underlying connection, and nothing ever re-establishes it.
//
// The protocol is strictly half-duplex with FIFO pairing: the client's
// internal guards keep wire lines intact under concurrency, but they do not
// route a reply back to the goroutine that sent the matching request.
// Callers that need that guarantee must serialize their sends.
type Client struct {
	endpoint Endpoint
	timeout  time.Duration
	writer   *frameWriter
	reader   *frameReader
	closer   io.Closer
	reason   string // non-empty marks a fail-fast client with no transport
}

// Connect opens the transport named by endpoint using DefaultTimeout.
func Connect(endpoint Endpoint) (*Client, error) {
	return ConnectTimeout(endpoint, DefaultTimeout)
}

// ConnectTimeout opens the transport named by endpoint. The timeout bounds
// both the socket dial and every subsequent wait for a response line.
//
// Stdio endpoints capture the process's standard streams without touching
// them, so that path cannot fail. Unavailable endpoints, and Unix endpoints
// on platforms without Unix socket support, produce a client whose every
// send fails fast with a stored reason. Only the TCP and Unix dials can
// return an error.
func ConnectTimeout(endpoint Endpoint, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	switch endpoint.Kind {
	case EndpointStdio:
		return &Client{
			endpoint: endpoint,
			timeout:  timeout,
			writer:   newFrameWriter(os.Stdout),
			reader:   newFrameReader(os.Stdin),
		}, nil
	case EndpointTCP:
		conn, err := net.DialTimeout("tcp", endpoint.Address, timeout)
		if err != nil {
			return nil, fmt.Errorf("dial tcp %s: %w", endpoint.Address, err)
		}
		return newConnClient(endpoint, timeout, conn), nil
	case EndpointUnix:
		if !unixSocketsSupported() {
			return failFastClient(endpoint, timeout, "unix sockets are not supported on "+runtime.GOOS), nil
		}
		conn, err := net.DialTimeout("unix", endpoint.Address, timeout)
		if err != nil {
			return nil, fmt.Errorf("dial unix %s: %w", endpoint.Address, err)
		}
		return newConnClient(endpoint, timeout, conn), nil
	case EndpointUnavailable:
		return failFastClient(endpoint, timeout, "command endpoint marked unavailable"), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidEndpoint, int(endpoint.Kind))
	}
}

// Unavailable returns a client with no transport whose every send fails with
// reason. Runtimes without a host command bus (Cloud Run, local development)
// use this to keep the call surface uniform instead of branching on mode.
func Unavailable(reason string) *Client {
	return failFastClient(UnavailableEndpoint(), DefaultTimeout, reason)
}

func newConnClient(endpoint Endpoint, timeout time.Duration, conn net.Conn) *Client {
	// The conn serves as both halves; each side gets its own guard.
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		writer:   newFrameWriter(conn),
		reader:   newFrameReader(conn),
		closer:   conn,
	}
}

func failFastClient(endpoint Endpoint, timeout time.Duration, reason string) *Client {
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		reason:   reason,
	}
}

// Endpoint returns the descriptor this client was built from.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Timeout returns the per-send response deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Available reports whether the client holds a real transport.
func (c *Client) Available() bool {
	return c.reason == ""
}

// Send writes one request line, then waits for the next response line until
// the client timeout elapses or ctx is cancelled.
//
// A response with ok=true is returned as-is. A response with ok=false
// becomes a *CommandFailure carrying the host's diagnostic (or a generic one
// when the host omitted it) and payload. On timeout, Send returns a
// *TimeoutError without retrying; nothing drains a response that arrives
// later, so it will be taken by whichever call reads next.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	if c.reason != "" {
		return Response{}, &UnavailableError{Reason: c.reason}
	}
	if err := c.writer.write(req); err != nil {
		return Response{}, err
	}
	resp, err := c.reader.next(ctx, c.timeout)
	if err != nil {
		return Response{}, err
	}
	if !resp.OK {
		diagnostic := resp.Diagnostic
		if diagnostic == "" {
			diagnostic = defaultFailureDiagnostic
		}
		return Response{}, &CommandFailure{Diagnostic: diagnostic, Payload: resp.Payload}
	}
	return resp, nil
}

// Close releases the underlying socket, if any. Stdio and fail-fast clients
// hold nothing to release, and no close handshake is sent to the peer. Only
// the longest-lived holder of a shared client should call it.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
