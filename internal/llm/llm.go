package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Generator abstracts generative backends.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a single generation call.
// Schema constrains the response to JSON; Grounding lets the model consult live search.
type Request struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Schema            *jsonschema.Schema
	Grounding         bool
}

// Response carries the model text and any grounding citations, in backend order.
type Response struct {
	Text    string
	Sources []Source
	Model   string
}

// Source is a grounding citation.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ErrorKind separates the failure categories callers treat differently.
type ErrorKind string

const (
	// KindTransport covers network failures, timeouts, quota and 5xx responses.
	KindTransport ErrorKind = "transport"
	// KindInvalidRequest is a backend-reported problem with the request itself.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindRefused is a content-safety refusal.
	KindRefused ErrorKind = "refused"
)

// Error is returned by Generator implementations.
type Error struct {
	Kind     ErrorKind
	Provider string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of a generator error. Unclassified errors count as transport.
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindTransport
}

// ErrNotConfigured is returned by the placeholder generator.
var ErrNotConfigured = errors.New("generative backend not configured")

// PlaceholderGenerator is used when no backend credentials are present.
type PlaceholderGenerator struct{}

// Generate returns ErrNotConfigured as an invalid-request error.
func (PlaceholderGenerator) Generate(context.Context, Request) (Response, error) {
	return Response{}, &Error{Kind: KindInvalidRequest, Provider: "none", Err: ErrNotConfigured}
}
