// Package apperror defines the error taxonomy shared by every layer.
//
// Each failure kind is a sentinel error. Constructors wrap the sentinel in an
// *AppError that carries the human-readable message shown to the operator,
// so callers match with errors.Is and display with err.Error():
//
//	if errors.Is(err, apperror.ErrValidation) { ... }
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation error")
	ErrCatalogFetch      = errors.New("catalog fetch failed")
	ErrExecutionRequest  = errors.New("execution request failed")
	ErrExecutionResponse = errors.New("execution response malformed")
)

// User-facing messages. The request message is the fallback used when the
// execution service does not say what went wrong.
const (
	MsgCatalogFetch      = "Failed to fetch algorithms"
	MsgExecutionRequest  = "Failed to run algorithm"
	MsgExecutionResponse = "Failed to run algorithm: unexpected response from server"

	MsgMissingSelectionOrInput = "missing selection or input: select an algorithm and provide input data"
	MsgInsufficientLines       = "insufficient lines: provide the array on the first line and the target on the second"
)

type AppError struct {
	Err     error  // sentinel identifying the kind
	Message string // Human-readable error message
	Field   string // Optional: input field causing the error
	Status  int    // Optional: HTTP status returned by the collaborator
	Cause   error  // Optional: underlying transport/decoding error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// apperror.ErrCatalogFetch as well as, say, context.DeadlineExceeded.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// CatalogFetch reports a network, status or parse failure loading the catalog.
func CatalogFetch(status int, cause error) *AppError {
	return &AppError{
		Err:     ErrCatalogFetch,
		Message: MsgCatalogFetch,
		Status:  status,
		Cause:   cause,
	}
}

// ExecutionRequest reports a non-success status or a network failure while
// submitting a run. serverMessage is the collaborator's own explanation, if
// it sent one; it becomes the user-visible message.
func ExecutionRequest(status int, serverMessage string, cause error) *AppError {
	msg := serverMessage
	if msg == "" {
		msg = MsgExecutionRequest
	}
	return &AppError{
		Err:     ErrExecutionRequest,
		Message: msg,
		Status:  status,
		Cause:   cause,
	}
}

// ExecutionResponse reports a success status with a body we cannot use.
func ExecutionResponse(cause error) *AppError {
	return &AppError{
		Err:     ErrExecutionResponse,
		Message: MsgExecutionResponse,
		Cause:   cause,
	}
}

// Message returns the text to show the operator for any error. Errors that
// are not *AppError get the generic run failure message; raw transport errors
// are for the log, not the screen.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return MsgExecutionRequest
}
