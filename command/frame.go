package command

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"
)

// isClosedErr reports whether err means the peer (or a local Close) tore the
// stream down, as opposed to any other transport fault. A reset connection
// counts: the peer can vanish between our write and its FIN draining.
func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// frameWriter serializes whole request lines onto the transport's write half.
// Its mutex guarantees line integrity only; it does not pair requests with
// responses.
type frameWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{w: bufio.NewWriter(w)}
}

func (fw *frameWriter) write(req Request) error {
	line, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, err := fw.w.Write(line); err != nil {
		return writeErr(err)
	}
	if err := fw.w.WriteByte('\n'); err != nil {
		return writeErr(err)
	}
	// The peer blocks until it sees the full line; the flush must not wait.
	if err := fw.w.Flush(); err != nil {
		return writeErr(err)
	}
	return nil
}

func writeErr(err error) error {
	if isClosedErr(err) {
		return ErrTransportClosed
	}
	return fmt.Errorf("write frame: %w", err)
}

// frameResult carries one decoded response line, or the error that replaced it.
type frameResult struct {
	resp Response
	err  error
}

// frameReader owns the transport's read half. A single pump goroutine,
// started lazily on first use, decodes lines and hands them over an
// unbuffered channel. The channel stands in for a read-side lock: readers
// never observe a torn line, and a response abandoned by a timed-out caller
// stays pending until whoever reads next takes it.
type frameReader struct {
	r        *bufio.Reader
	once     sync.Once
	frames   chan frameResult
	terminal error // set by the pump before frames closes
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{
		r:      bufio.NewReader(r),
		frames: make(chan frameResult),
	}
}

func (fr *frameReader) start() {
	fr.once.Do(func() { go fr.pump() })
}

func (fr *frameReader) pump() {
	defer close(fr.frames)
	for {
		line, err := fr.r.ReadBytes('\n')
		if len(line) > 0 {
			var resp Response
			if derr := json.Unmarshal(line, &resp); derr != nil {
				fr.frames <- frameResult{err: fmt.Errorf("decode response: %w", derr)}
			} else {
				fr.frames <- frameResult{resp: resp}
			}
		}
		if err != nil {
			// Zero bytes at end of stream means the peer closed the channel,
			// which is never reported as a decode failure.
			if isClosedErr(err) {
				fr.terminal = ErrTransportClosed
			} else {
				fr.terminal = fmt.Errorf("read frame: %w", err)
			}
			fr.frames <- frameResult{err: fr.terminal}
			return
		}
	}
}

// next blocks until the pump produces a frame, the timeout elapses, or ctx is
// cancelled. After a terminal read error every subsequent call reports that
// same error.
func (fr *frameReader) next(ctx context.Context, timeout time.Duration) (Response, error) {
	fr.start()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res, ok := <-fr.frames:
		if !ok {
			return Response{}, fr.terminal
		}
		return res.resp, res.err
	case <-timer.C:
		return Response{}, &TimeoutError{Timeout: timeout}
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
