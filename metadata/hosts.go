package metadata

import (
	"net/netip"
	"strings"
)

// pickClientIPFromXFF returns the first public address from an
// x-forwarded-for chain, falling back to the first entry of any kind.
func pickClientIPFromXFF(xff string) string {
	first := ""
	for _, part := range strings.Split(xff, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if first == "" {
			first = part
		}
		if addr, err := netip.ParseAddr(part); err == nil && isPublicAddr(addr) {
			return part
		}
	}
	return first
}

func isPublicAddr(addr netip.Addr) bool {
	return !(addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified())
}

// regionFromHost maps Cloud Run hostnames to a region. Hosts look like
// <service>-<hash>-<region>.a.run.app (legacy) or
// <service>-<projectNumber>.<region>.run.app (modern).
func regionFromHost(host string) string {
	if host == "" {
		return ""
	}
	labels := strings.Split(host, ".")

	region := ""
	for i := 0; i+1 < len(labels); i++ {
		if labels[i+1] == "run" {
			region = labels[i]
			break
		}
	}
	if region == "" && len(labels) >= 3 {
		region = labels[len(labels)-3]
	}
	if region == "a" {
		// Legacy hosts bury the region code at the end of the first label.
		if idx := strings.LastIndex(labels[0], "-"); idx >= 0 {
			region = labels[0][idx+1:]
		}
	}
	if region == "" {
		return ""
	}

	// Legacy short codes used by a.run.app hosts.
	switch region {
	case "uc":
		return "us-central1"
	case "ue":
		return "us-east1"
	case "uw1":
		return "us-west1"
	}
	return region
}

// projectFromHost extracts the project number from modern Cloud Run hosts
// (<service>-<projectNumber>.<region>.run.app).
func projectFromHost(host string) string {
	firstLabel, _, _ := strings.Cut(host, ".")
	idx := strings.LastIndex(firstLabel, "-")
	if idx < 0 {
		return ""
	}
	numeric := firstLabel[idx+1:]
	if numeric == "" {
		return ""
	}
	for _, c := range numeric {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return numeric
}
