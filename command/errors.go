package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// defaultFailureDiagnostic stands in when the host reports ok=false without
// a diagnostic of its own.
const defaultFailureDiagnostic = "host returned failure"

// ErrTransportClosed reports that the peer closed the channel before or
// instead of producing a response line.
var ErrTransportClosed = errors.New("command transport closed")

// CommandFailure reports a command the host received and executed but
// rejected. The payload the host attached to the failure is preserved for
// caller inspection.
type CommandFailure struct {
	Diagnostic string
	Payload    json.RawMessage
}

func (e *CommandFailure) Error() string {
	return "command failed: " + e.Diagnostic
}

// TimeoutError reports that no response line arrived within the client's
// configured timeout. The request is not retried and any response arriving
// later is left for the next reader.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s", e.Timeout)
}

// UnavailableError reports a send on a channel that was configured away. Its
// text is exactly the reason stored when the client was built.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return e.Reason
}
