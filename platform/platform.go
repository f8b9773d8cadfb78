// Package platform infers which container runtime the process executes
// inside from environment variables the platform injects automatically.
package platform

import "os"

// Kind identifies a supported container runtime.
type Kind int

const (
	// KindGeneric is the fallback when no platform markers are present.
	KindGeneric Kind = iota
	// KindCloudflare is Cloudflare Containers, fronted by a Worker shim.
	KindCloudflare
	// KindCloudRun is Google Cloud Run, which exposes no host command bus.
	KindCloudRun
)

func (k Kind) String() string {
	switch k {
	case KindCloudflare:
		return "cloudflare"
	case KindCloudRun:
		return "cloudrun"
	default:
		return "generic"
	}
}

// CloudflarePlatform carries Cloudflare-specific details gleaned from the
// environment.
type CloudflarePlatform struct {
	WorkerName string
}

// CloudRunPlatform carries Google Cloud Run deployment details.
type CloudRunPlatform struct {
	Service       string
	Revision      string
	Configuration string
	ProjectID     string
	Region        string
}

// Platform is the runtime detected at startup. The zero value is generic.
type Platform struct {
	kind       Kind
	cloudflare *CloudflarePlatform
	cloudRun   *CloudRunPlatform
}

// Generic returns the platform used when nothing was detected.
func Generic() Platform {
	return Platform{kind: KindGeneric}
}

// NewCloudflare builds a Cloudflare platform value.
func NewCloudflare(info CloudflarePlatform) Platform {
	return Platform{kind: KindCloudflare, cloudflare: &info}
}

// NewCloudRun builds a Cloud Run platform value.
func NewCloudRun(info CloudRunPlatform) Platform {
	return Platform{kind: KindCloudRun, cloudRun: &info}
}

// Detect infers the current platform from injected environment variables.
// Cloudflare markers win over Cloud Run ones.
func Detect() Platform {
	if p, ok := detectCloudflare(); ok {
		return p
	}
	if p, ok := detectCloudRun(); ok {
		return p
	}
	return Generic()
}

func detectCloudflare() (Platform, bool) {
	worker := os.Getenv("CONTAINERFLARE_WORKER")
	marked := worker != "" ||
		os.Getenv("CF_CONTAINER_PORT") != "" ||
		os.Getenv("CF_CONTAINER_ADDR") != "" ||
		os.Getenv("CF_CMD_ENDPOINT") != ""
	if !marked {
		return Platform{}, false
	}
	return NewCloudflare(CloudflarePlatform{WorkerName: worker}), true
}

func detectCloudRun() (Platform, bool) {
	info := CloudRunPlatform{
		Service:       os.Getenv("K_SERVICE"),
		Revision:      os.Getenv("K_REVISION"),
		Configuration: os.Getenv("K_CONFIGURATION"),
		ProjectID:     firstEnv("GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"),
		Region:        firstEnv("GOOGLE_CLOUD_REGION", "REGION"),
	}
	marked := info.Service != "" ||
		info.Revision != "" ||
		info.ProjectID != "" ||
		os.Getenv("PORT") != ""
	if !marked {
		return Platform{}, false
	}
	return NewCloudRun(info), true
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// Kind returns the detected runtime kind.
func (p Platform) Kind() Kind {
	return p.kind
}

// IsCloudflare reports whether the runtime is Cloudflare Containers.
func (p Platform) IsCloudflare() bool {
	return p.kind == KindCloudflare
}

// IsCloudRun reports whether the runtime is Google Cloud Run.
func (p Platform) IsCloudRun() bool {
	return p.kind == KindCloudRun
}

// Cloudflare returns Cloudflare details, or nil on other platforms.
func (p Platform) Cloudflare() *CloudflarePlatform {
	return p.cloudflare
}

// CloudRun returns Cloud Run details, or nil on other platforms.
func (p Platform) CloudRun() *CloudRunPlatform {
	return p.cloudRun
}

func (p Platform) String() string {
	return p.kind.String()
}
