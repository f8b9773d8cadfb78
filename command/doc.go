// Package command implements the container side of the host command channel:
// a request/response client speaking one JSON object per newline-terminated
// line over stdio pipes, TCP, or Unix domain sockets.
//
// A client wraps exactly one transport for its entire lifetime and never
// reconnects. Requests and responses are paired by order alone, with no
// correlation identifiers, so callers that share a client concurrently are
// guaranteed complete lines on the wire but must serialize their own sends
// to receive the reply to their own request.
//
// Runtimes that structurally lack a host command bus use an unavailable
// client, which keeps the same call surface and fails every send immediately
// with a stored reason.
package command
