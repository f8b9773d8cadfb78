// Package testsupport provides scripted host-side peers for command channel
// tests.
package testsupport

import (
	"bufio"
	"net"
	"sync"
	"testing"
)

// Handler scripts a peer: it receives one request line (without the trailing
// newline) and returns the reply line plus whether to send it at all.
type Handler func(line string) (reply string, respond bool)

// StaticReply answers every request with the same line.
func StaticReply(line string) Handler {
	return func(string) (string, bool) { return line, true }
}

// Silent never replies, leaving the client to time out.
func Silent() Handler {
	return func(string) (string, bool) { return "", false }
}

// Peer is a listening host-side endpoint that answers each received line
// according to its handler. Every received line is recorded.
type Peer struct {
	ln net.Listener

	mu    sync.Mutex
	lines []string

	closeOnAccept bool
}

// StartTCPPeer listens on a loopback TCP port and serves handler until the
// test ends.
func StartTCPPeer(t *testing.T, handler Handler) *Peer {
	t.Helper()
	return startPeer(t, "tcp", "127.0.0.1:0", handler, false)
}

// StartUnixPeer listens on the Unix socket at path and serves handler until
// the test ends.
func StartUnixPeer(t *testing.T, path string, handler Handler) *Peer {
	t.Helper()
	return startPeer(t, "unix", path, handler, false)
}

// StartClosingPeer accepts connections and closes them immediately without
// reading or writing a byte.
func StartClosingPeer(t *testing.T) *Peer {
	t.Helper()
	return startPeer(t, "tcp", "127.0.0.1:0", nil, true)
}

func startPeer(t *testing.T, network, addr string, handler Handler, closeOnAccept bool) *Peer {
	t.Helper()
	ln, err := net.Listen(network, addr)
	if err != nil {
		t.Fatalf("listen %s %s: %v", network, addr, err)
	}
	p := &Peer{ln: ln, closeOnAccept: closeOnAccept}
	go p.serve(handler)
	t.Cleanup(func() { _ = p.ln.Close() })
	return p
}

// Addr returns the listener address (host:port for TCP, path for Unix).
func (p *Peer) Addr() string {
	return p.ln.Addr().String()
}

// Lines returns a copy of every line received so far, across connections.
func (p *Peer) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.lines))
	copy(out, p.lines)
	return out
}

func (p *Peer) serve(handler Handler) {
	for {
		conn, err := p.ln.Accept()
		if err != nil {
			return
		}
		if p.closeOnAccept {
			_ = conn.Close()
			continue
		}
		go p.handleConn(conn, handler)
	}
}

func (p *Peer) handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		p.mu.Lock()
		p.lines = append(p.lines, line)
		p.mu.Unlock()
		if handler == nil {
			continue
		}
		reply, respond := handler(line)
		if !respond {
			continue
		}
		if _, err := conn.Write(append([]byte(reply), '\n')); err != nil {
			return
		}
	}
}
