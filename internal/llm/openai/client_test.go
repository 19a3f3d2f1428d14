package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/schema"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func withServer(t *testing.T, status int, body string, inspect func(map[string]any)) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() {
		apiURL = oldURL
		server.Close()
	})
}

func TestGenerateSendsJSONSchemaFormat(t *testing.T) {
	var got map[string]any
	withServer(t, http.StatusOK, `{"model":"gpt-4o-mini","choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}]}`, func(p map[string]any) {
		got = p
	})

	c, err := NewClient("key", "gpt-4o-mini", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := c.Generate(context.Background(), llm.Request{
		SystemInstruction: "strict",
		Prompt:            "resume",
		Schema:            schema.Analysis(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != `{"ok":true}` || resp.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	format, _ := got["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", got["response_format"])
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
}

func TestGenerateRejectsGrounding(t *testing.T) {
	c, _ := NewClient("key", "gpt-4o-mini", time.Second)
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "x", Grounding: true})
	if llm.KindOf(err) != llm.KindInvalidRequest {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestGenerateClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   llm.ErrorKind
	}{
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad schema","type":"invalid_request_error"}}`, llm.KindInvalidRequest},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, llm.KindTransport},
		{"server", http.StatusBadGateway, `<html>bad gateway</html>`, llm.KindTransport},
		{"filtered", http.StatusOK, `{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`, llm.KindRefused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withServer(t, tt.status, tt.body, nil)
			c, _ := NewClient("key", "gpt-4o-mini", time.Second)
			_, err := c.Generate(context.Background(), llm.Request{Prompt: "x"})
			if got := llm.KindOf(err); got != tt.want {
				t.Fatalf("KindOf = %s, want %s (err=%v)", got, tt.want, err)
			}
		})
	}
}
