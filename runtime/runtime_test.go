package runtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/sam0x17/containerflare/command"
	"github.com/sam0x17/containerflare/config"
	"github.com/sam0x17/containerflare/internal/testsupport"
	"github.com/sam0x17/containerflare/logging"
	"github.com/sam0x17/containerflare/runtime"
)

func startRuntime(t *testing.T, cfg *config.Config, handler http.Handler) string {
	t.Helper()
	rt, err := runtime.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.ServeListener(ctx, ln, handler) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve returned: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return ln.Addr().String()
}

func TestServeInjectsContext(t *testing.T) {
	cfg := config.Default()
	cfg.Command.Endpoint = "disabled"

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := runtime.FromRequest(r)
		if !ok {
			http.Error(w, "no context", http.StatusInternalServerError)
			return
		}
		_, err := c.Invoke(r.Context(), command.Empty("ping"))
		var unavailable *command.UnavailableError
		if !errors.As(err, &unavailable) {
			http.Error(w, fmt.Sprintf("unexpected invoke result: %v", err), http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "request %s", c.Metadata.RequestID)
	})

	addr := startRuntime(t, &cfg, handler)

	req, err := http.NewRequest("GET", "http://"+addr+"/hello", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("cf-ray", "ray-77")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if string(body) != "request ray-77" {
		t.Fatalf("body = %q", body)
	}
}

func TestServeCommandRoundTrip(t *testing.T) {
	peer := testsupport.StartTCPPeer(t, testsupport.StaticReply(`{"ok":true,"payload":{"granted":true}}`))

	cfg := config.Default()
	cfg.Command.Endpoint = "tcp://" + peer.Addr()
	cfg.Command.TimeoutSeconds = 2

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := runtime.FromRequest(r)
		resp, err := c.Invoke(r.Context(), command.Empty("request_capability"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(resp.Payload)
	})

	addr := startRuntime(t, &cfg, handler)

	resp, err := http.Get("http://" + addr + "/cap")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var payload struct {
		Granted bool `json:"granted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Granted {
		t.Fatal("expected granted payload from the host peer")
	}

	lines := peer.Lines()
	if len(lines) != 1 {
		t.Fatalf("peer saw %d lines", len(lines))
	}
	var req command.Request
	if err := json.Unmarshal([]byte(lines[0]), &req); err != nil {
		t.Fatalf("peer line: %v", err)
	}
	if req.Command != "request_capability" {
		t.Fatalf("command = %q", req.Command)
	}
}

func TestNewRejectsInvalidEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Command.Endpoint = "bogus"

	_, err := runtime.New(&cfg, logging.NewNop())
	if !errors.Is(err, command.ErrInvalidEndpoint) {
		t.Fatalf("expected ErrInvalidEndpoint, got %v", err)
	}
}

func TestNewRejectsUnreachableEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Command.Endpoint = "tcp://127.0.0.1:1"
	cfg.Command.TimeoutSeconds = 1

	if _, err := runtime.New(&cfg, logging.NewNop()); err == nil {
		t.Fatal("expected connect failure to abort startup")
	}
}
