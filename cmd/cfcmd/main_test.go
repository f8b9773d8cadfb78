package main

import (
	"bytes"
	"net"
	"strings"
	"testing"

	"github.com/sam0x17/containerflare/config"
	"github.com/sam0x17/containerflare/logging"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvContainerAddr, config.EnvContainerPort, config.EnvCmdEndpoint,
		config.EnvCmdTimeout, config.EnvConfigFile,
		"CONTAINERFLARE_WORKER", "K_SERVICE", "K_REVISION",
		"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "PORT",
	} {
		t.Setenv(name, "")
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSendRejectsInvalidPayload(t *testing.T) {
	clearEnv(t)
	_, err := runCommand(t, "send", "ping", "--payload", "{not json")
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("expected payload validation error, got %v", err)
	}
}

func TestSendAgainstStubHost(t *testing.T) {
	clearEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go hostServe(ln, logging.NewNop())

	out, err := runCommand(t,
		"send", "deploy",
		"--endpoint", "tcp://"+ln.Addr().String(),
		"--payload", `{"version":3}`,
		"--timeout", "2s",
	)
	if err != nil {
		t.Fatalf("send: %v (output %q)", err, out)
	}
	if !strings.Contains(out, `"ok":true`) {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, `"version":3`) {
		t.Fatalf("stub host should echo the payload, output = %q", out)
	}
}

func TestPingAgainstStubHost(t *testing.T) {
	clearEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go hostServe(ln, logging.NewNop())

	out, err := runCommand(t, "ping", "--endpoint", "tcp://"+ln.Addr().String(), "--timeout", "2s")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !strings.Contains(out, "ok in ") {
		t.Fatalf("output = %q", out)
	}
}

func TestPlatformCommand(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONTAINERFLARE_WORKER", "edge-worker")

	out, err := runCommand(t, "platform")
	if err != nil {
		t.Fatalf("platform: %v", err)
	}
	if !strings.Contains(out, "cloudflare") || !strings.Contains(out, "edge-worker") {
		t.Fatalf("output = %q", out)
	}
}

func TestHostRejectsStdioListen(t *testing.T) {
	clearEnv(t)
	_, err := runCommand(t, "host", "--listen", "stdio")
	if err == nil || !strings.Contains(err.Error(), "tcp:// or unix://") {
		t.Fatalf("expected listen endpoint error, got %v", err)
	}
}
