package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure that can leave the pipeline.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindExtractionFailed   Kind = "extraction_failed"
	KindGenerationFailed   Kind = "generation_failed"
	KindSchemaViolation    Kind = "schema_violation"
	KindDiscoveryFailed    Kind = "discovery_failed"
	KindStoreNotConfigured Kind = "store_not_configured"
	KindQueryFailed        Kind = "query_failed"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrSchemaViolation    = errors.New("schema violation")
	ErrDiscoveryFailed    = errors.New("discovery failed")
	ErrStoreNotConfigured = errors.New("store not configured")
	ErrQueryFailed        = errors.New("query failed")
)

var sentinels = map[Kind]error{
	KindInvalidInput:       ErrInvalidInput,
	KindExtractionFailed:   ErrExtractionFailed,
	KindGenerationFailed:   ErrGenerationFailed,
	KindSchemaViolation:    ErrSchemaViolation,
	KindDiscoveryFailed:    ErrDiscoveryFailed,
	KindStoreNotConfigured: ErrStoreNotConfigured,
	KindQueryFailed:        ErrQueryFailed,
}

// Error is the classified error returned across the pipeline boundary.
// Raw holds the backend payload for diagnostics and must not be sent to clients.
type Error struct {
	Kind  Kind
	Op    string
	Input string
	Raw   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + sentinels[e.Kind].Error()
	if e.Input != "" {
		msg += fmt.Sprintf(" (%s)", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// New builds a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithInput attaches the offending input (file name, role) to the error.
func (e *Error) WithInput(input string) *Error {
	e.Input = input
	return e
}

// WithRaw attaches the raw backend payload.
func (e *Error) WithRaw(raw string) *Error {
	e.Raw = raw
	return e
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind, true
		}
	}
	return "", false
}

// RawOf returns the raw backend payload attached to err, if any.
func RawOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Raw
	}
	return ""
}

// HTTPStatus maps an error to the status code and error code used in API responses.
func HTTPStatus(err error) (int, string) {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error"
	}
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest, "validation_error"
	case KindExtractionFailed:
		return http.StatusUnprocessableEntity, string(kind)
	case KindStoreNotConfigured:
		return http.StatusServiceUnavailable, string(kind)
	default:
		return http.StatusBadGateway, string(kind)
	}
}

// Message returns a client-safe description for the error's kind.
func Message(err error) string {
	kind, _ := KindOf(err)
	switch kind {
	case KindInvalidInput:
		var ae *Error
		if errors.As(err, &ae) && ae.Err != nil {
			return ae.Err.Error()
		}
		return "invalid input"
	case KindExtractionFailed:
		return "Could not extract text from the uploaded document."
	case KindGenerationFailed:
		return "The analysis backend is unavailable. Please try again."
	case KindSchemaViolation:
		return "The analysis backend returned an unexpected response."
	case KindDiscoveryFailed:
		return "Could not discover learning resources."
	case KindStoreNotConfigured:
		return "Job matching is not configured."
	case KindQueryFailed:
		return "Job search failed."
	default:
		return "Unexpected server error"
	}
}
