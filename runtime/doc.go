// Package runtime wires a plain http.Handler into a containerflare service:
// it resolves configuration, detects the platform, connects the one shared
// host command client for the process, and serves HTTP with per-request
// platform context injected for handlers to pick up with FromRequest.
package runtime
