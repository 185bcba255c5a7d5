package apperr

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how the transport layer should report them.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindUpstream   Kind = "upstream_error"
	KindInternal   Kind = "processing_error"
)

// Request-level error codes. Only these reject a request outright.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeMissingURL         = "MISSING_URL"
	CodeMissingText        = "MISSING_TEXT"
	CodeFetchError         = "FETCH_ERROR"
	CodeFetchFailed        = "FETCH_FAILED"
	CodeEmptyContent       = "EMPTY_CONTENT"
	CodeClickbaitInitError = "CLICKBAIT_INIT_ERROR"
)

// Model failure sentinels. Both degrade a response; they only change the diagnostic.
var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrMalformedOutput  = errors.New("model returned malformed output")
)

// Error is a fatal, machine-readable request error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error.
func New(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Validation builds a validation error.
func Validation(code, message string) *Error {
	return New(KindValidation, code, message, nil)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "INTERNAL_ERROR" when it carries none.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return "INTERNAL_ERROR"
}

// Diagnostic renders a degraded model call as a human-readable note.
func Diagnostic(component string, err error) string {
	if errors.Is(err, ErrMalformedOutput) {
		return fmt.Sprintf("%s malformed output: %v", component, err)
	}
	return fmt.Sprintf("%s unavailable: %v", component, err)
}
