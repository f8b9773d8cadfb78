// Package metadata extracts per-request platform metadata from HTTP headers.
//
// Cloudflare's Worker shim can forward a complete metadata document in the
// x-containerflare-metadata header, which wins outright. Otherwise metadata
// is assembled from cf-* headers, the x-forwarded-* chain, client hint
// headers, and platform details detected from the environment; on Cloud Run
// the x-cloud-trace-context header and run.app host labels fill in trace,
// region, and project information.
package metadata
