package command

import (
	"encoding/json"
	"fmt"
)

// Request is one command issued to the host over the channel.
type Request struct {
	// Command is the verb the host shim dispatches on.
	Command string `json:"command"`
	// Payload is the structured argument. A nil payload travels as JSON null.
	Payload json.RawMessage `json:"payload"`
}

// NewRequest builds a request carrying an already-encoded JSON payload.
func NewRequest(command string, payload json.RawMessage) Request {
	return Request{Command: command, Payload: payload}
}

// Empty builds a request whose payload is null.
func Empty(command string) Request {
	return Request{Command: command}
}

// MarshalRequest builds a request by encoding payload as JSON.
func MarshalRequest(command string, payload any) (Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode payload: %w", err)
	}
	return Request{Command: command, Payload: raw}, nil
}

// Response is the host's reply to a previously issued request.
type Response struct {
	// OK reports whether the host executed the command successfully.
	OK bool `json:"ok"`
	// Payload is the structured result. A missing payload reads as JSON null.
	Payload json.RawMessage `json:"payload"`
	// Diagnostic is supplied by the host only when OK is false.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// OKResponse builds a success response with a null payload.
func OKResponse() Response {
	return Response{OK: true}
}
