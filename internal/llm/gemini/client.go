// Package gemini implements llm.Generator on the Google Gen AI SDK, against
// either the Gemini Developer API or Vertex AI.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/shared/telemetry"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-2.5-flash"

	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// Config selects the backend and model.
type Config struct {
	APIKey   string
	Backend  string
	Project  string
	Location string
	Model    string
}

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Generator.
type Client struct {
	models modelsAPI
	model  string
}

// New constructs a client for the configured backend.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cc := &genai.ClientConfig{}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendVertex:
		if strings.TrimSpace(cfg.Project) == "" {
			return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the vertex backend")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	default:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithModels(client.Models, cfg.Model), nil
}

func newWithModels(models modelsAPI, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

// Generate issues one GenerateContent call.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if req.Schema != nil && req.Grounding {
		return llm.Response{}, &llm.Error{
			Kind:     llm.KindInvalidRequest,
			Provider: providerName,
			Err:      errors.New("response schema and search grounding cannot be combined in one request"),
		}
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	config, err := buildConfig(req)
	if err != nil {
		return llm.Response{}, &llm.Error{Kind: llm.KindInvalidRequest, Provider: providerName, Err: err}
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		return llm.Response{}, classify(err)
	}
	if err := refusal(resp); err != nil {
		return llm.Response{}, err
	}

	out := llm.Response{
		Text:    resp.Text(),
		Sources: sources(resp),
		Model:   model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		telemetry.Info("llm.usage", map[string]any{
			"provider":          providerName,
			"model":             out.Model,
			"grounded":          req.Grounding,
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"candidates_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		})
	}
	return out, nil
}

func buildConfig(req llm.Request) (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	if s := strings.TrimSpace(req.SystemInstruction); s != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}
	if req.Schema != nil {
		schema, err := convertSchema(req.Schema)
		if err != nil {
			return nil, err
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = schema
	}
	if req.Grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return config, nil
}

// classify maps SDK errors onto llm error kinds.
func classify(err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Code
	}

	kind := llm.KindTransport
	if status >= 400 && status < 500 &&
		status != http.StatusRequestTimeout &&
		status != http.StatusTooManyRequests {
		kind = llm.KindInvalidRequest
	}
	return &llm.Error{Kind: kind, Provider: providerName, Status: status, Err: err}
}

func refusal(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return &llm.Error{Kind: llm.KindTransport, Provider: providerName, Err: errors.New("empty response")}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		msg := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			msg += ": " + fb.BlockReasonMessage
		}
		return &llm.Error{Kind: llm.KindRefused, Provider: providerName, Err: errors.New("prompt blocked: " + msg)}
	}
	if len(resp.Candidates) == 0 {
		return &llm.Error{Kind: llm.KindTransport, Provider: providerName, Err: errors.New("response has no candidates")}
	}
	switch resp.Candidates[0].FinishReason {
	case genai.FinishReasonSafety,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII,
		genai.FinishReasonRecitation:
		return &llm.Error{
			Kind:     llm.KindRefused,
			Provider: providerName,
			Err:      fmt.Errorf("candidate finished with %s", resp.Candidates[0].FinishReason),
		}
	}
	return nil
}

// sources collects web grounding chunks from every candidate in backend order.
func sources(resp *genai.GenerateContentResponse) []llm.Source {
	var out []llm.Source
	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out = append(out, llm.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return out
}

var _ llm.Generator = (*Client)(nil)
