package command_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sam0x17/containerflare/command"
)

func TestRequestRoundTrip(t *testing.T) {
	req := command.Empty("ping")
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"payload":null`) {
		t.Fatalf("nil payload should travel as null, got %s", data)
	}
	var back command.Request
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Command != "ping" {
		t.Fatalf("command = %q, want ping", back.Command)
	}
	if string(back.Payload) != "null" {
		t.Fatalf("payload = %q, want null", back.Payload)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := command.Response{OK: true, Payload: json.RawMessage(`{"pong":true}`)}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "diagnostic") {
		t.Fatalf("diagnostic should be absent when ok, got %s", data)
	}
	var back command.Response
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.OK || string(back.Payload) != `{"pong":true}` {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestResponseDefaults(t *testing.T) {
	var resp command.Response
	if err := json.Unmarshal([]byte(`{"ok":false}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.OK {
		t.Fatal("ok should be false")
	}
	if resp.Payload != nil {
		t.Fatalf("payload should default to nil (null), got %q", resp.Payload)
	}
	if resp.Diagnostic != "" {
		t.Fatalf("diagnostic should default to empty, got %q", resp.Diagnostic)
	}
}

func TestMarshalRequest(t *testing.T) {
	req, err := command.MarshalRequest("set_env", map[string]string{"key": "value"})
	if err != nil {
		t.Fatalf("MarshalRequest: %v", err)
	}
	if string(req.Payload) != `{"key":"value"}` {
		t.Fatalf("payload = %s", req.Payload)
	}
}
