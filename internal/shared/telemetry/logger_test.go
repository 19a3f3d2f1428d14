package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("pipeline.analyze", map[string]any{"request_id": "req-1", "duration_ms": 12.5})

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", "request_id", "duration_ms"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field %s in %v", key, payload)
		}
	}
	if payload["level"] != "info" || payload["msg"] != "pipeline.analyze" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	With(map[string]any{"request_id": "req-2"}).Error("boom")

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload["request_id"] != "req-2" || payload["level"] != "error" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
