// Package config loads runtime configuration for a containerflare service.
//
// Defaults match the local Cloudflare containers sidecar contract
// (127.0.0.1:8787, stdio command endpoint). An optional TOML file refines the
// defaults and environment variables injected by the platform win over both,
// so a container image ships one config and the shim steers it per
// deployment. An unparseable command endpoint fails resolution outright;
// startup is the only place these errors can surface.
package config
