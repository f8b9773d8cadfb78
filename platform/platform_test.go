package platform_test

import (
	"testing"

	"github.com/sam0x17/containerflare/platform"
)

func clearPlatformEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CONTAINERFLARE_WORKER", "CF_CONTAINER_PORT", "CF_CONTAINER_ADDR", "CF_CMD_ENDPOINT",
		"K_SERVICE", "K_REVISION", "K_CONFIGURATION",
		"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GOOGLE_CLOUD_REGION", "REGION", "PORT",
	} {
		t.Setenv(name, "")
	}
}

func TestDetectGeneric(t *testing.T) {
	clearPlatformEnv(t)
	p := platform.Detect()
	if p.Kind() != platform.KindGeneric {
		t.Fatalf("kind = %v, want generic", p.Kind())
	}
	if p.Cloudflare() != nil || p.CloudRun() != nil {
		t.Fatal("generic platform should carry no details")
	}
}

func TestDetectCloudflare(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("CONTAINERFLARE_WORKER", "edge-worker")
	t.Setenv("CF_CMD_ENDPOINT", "stdio")

	p := platform.Detect()
	if !p.IsCloudflare() {
		t.Fatalf("kind = %v, want cloudflare", p.Kind())
	}
	if p.Cloudflare().WorkerName != "edge-worker" {
		t.Fatalf("worker = %q", p.Cloudflare().WorkerName)
	}
}

func TestDetectCloudflareWinsOverCloudRun(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("CF_CONTAINER_PORT", "8787")
	t.Setenv("K_SERVICE", "svc")

	if p := platform.Detect(); !p.IsCloudflare() {
		t.Fatalf("kind = %v, want cloudflare", p.Kind())
	}
}

func TestDetectCloudRun(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("K_SERVICE", "svc")
	t.Setenv("K_REVISION", "svc-00042-abc")
	t.Setenv("GCLOUD_PROJECT", "proj-123")
	t.Setenv("REGION", "us-central1")

	p := platform.Detect()
	if !p.IsCloudRun() {
		t.Fatalf("kind = %v, want cloudrun", p.Kind())
	}
	run := p.CloudRun()
	if run.Service != "svc" || run.Revision != "svc-00042-abc" {
		t.Fatalf("details = %+v", run)
	}
	if run.ProjectID != "proj-123" || run.Region != "us-central1" {
		t.Fatalf("details = %+v", run)
	}
}
