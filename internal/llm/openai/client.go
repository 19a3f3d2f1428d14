package openai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/shared/telemetry"
)

const providerName = "openai"

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Generator using OpenAI Chat Completions with structured outputs.
// Search grounding is not available on this backend.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string `json:"name"`
	Schema any    `json:"schema"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate issues one chat completion.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if req.Grounding {
		return llm.Response{}, &llm.Error{
			Kind:     llm.KindInvalidRequest,
			Provider: providerName,
			Err:      errors.New("search grounding is not supported"),
		}
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(req.SystemInstruction); s != "" {
		messages = append(messages, chatMessage{Role: "system", Content: s})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	temp := float32(0)
	body := chatRequest{Model: model, Messages: messages}
	if !isGPT5(model) {
		body.Temperature = &temp
	}
	if req.Schema != nil {
		body.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: "response", Schema: req.Schema},
		}
	}

	parsed, status, err := c.do(ctx, body)
	if err != nil {
		return llm.Response{}, err
	}
	if parsed.Error != nil {
		kind := llm.KindTransport
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests && status != http.StatusRequestTimeout {
			kind = llm.KindInvalidRequest
		}
		return llm.Response{}, &llm.Error{
			Kind:     kind,
			Provider: providerName,
			Status:   status,
			Err:      fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type),
		}
	}
	if status >= 500 {
		return llm.Response{}, &llm.Error{Kind: llm.KindTransport, Provider: providerName, Status: status, Err: errors.New("server error")}
	}
	if len(parsed.Choices) == 0 {
		return llm.Response{}, &llm.Error{Kind: llm.KindTransport, Provider: providerName, Status: status, Err: errors.New("response missing choices")}
	}
	if parsed.Choices[0].FinishReason == "content_filter" {
		return llm.Response{}, &llm.Error{Kind: llm.KindRefused, Provider: providerName, Err: errors.New("content filtered")}
	}

	logUsage(model, hashPrompt(messages), parsed)
	out := llm.Response{Text: strings.TrimSpace(parsed.Choices[0].Message.Content), Model: model}
	if parsed.Model != "" {
		out.Model = parsed.Model
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, body chatRequest) (chatResponse, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return chatResponse{}, 0, &llm.Error{Kind: llm.KindInvalidRequest, Provider: providerName, Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return chatResponse{}, 0, &llm.Error{Kind: llm.KindInvalidRequest, Provider: providerName, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return chatResponse{}, 0, &llm.Error{Kind: llm.KindTransport, Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatResponse{}, resp.StatusCode, &llm.Error{Kind: llm.KindTransport, Provider: providerName, Status: resp.StatusCode, Err: err}
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return chatResponse{}, resp.StatusCode, &llm.Error{
			Kind:     llm.KindTransport,
			Provider: providerName,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("response parse: %w", err),
		}
	}
	return parsed, resp.StatusCode, nil
}

func logUsage(model, promptHash string, parsed chatResponse) {
	fields := map[string]any{
		"provider":    providerName,
		"model":       model,
		"prompt_hash": promptHash,
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.usage", fields)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func hashPrompt(messages []chatMessage) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

var _ llm.Generator = (*Client)(nil)
