package wapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrNotIdentified = errors.New("object has no reference id")
	ErrUnknownField  = errors.New("unknown field")
	ErrUnknownKind   = errors.New("unknown object kind")
	ErrNilTransport  = errors.New("transport is required")
	ErrNilKind       = errors.New("kind is required")
	ErrEmptyRef      = errors.New("reference id is required")
)

// ProtocolError is a failed WAPI call.
type ProtocolError struct {
	Method     string
	Path       string
	StatusCode int
	// Code is the WAPI error code, e.g. "Client.Ibap.Data.NotFound".
	Code string
	// Message is the body's "text", or the raw body when it is not JSON.
	Message string
	Raw     []byte
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: %s (status: %d)", e.Method, e.Path, e.Message, e.StatusCode)
}

// CapabilityError is an operation the object's kind does not support.
type CapabilityError struct {
	Kind      string
	Operation Operation
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Kind, e.Operation)
}

// StateError is an operation attempted in the wrong object state.
type StateError struct {
	Kind      string
	Operation Operation
	Err       error
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Operation, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StateError) Unwrap() error {
	return e.Err
}

// errorBody is the WAPI error payload.
type errorBody struct {
	Error string `json:"Error"`
	Code  string `json:"code"`
	Text  string `json:"text"`
}

// ParseProtocolError builds a ProtocolError from a failed response.
// The message is the body's "text" field; when the body is not a JSON
// object with that field the raw body is used instead.
func ParseProtocolError(method, path string, resp *Response) *ProtocolError {
	perr := &ProtocolError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Raw:        resp.Body,
		Message:    resp.Raw(),
	}

	var body errorBody

	err := json.Unmarshal(resp.Body, &body)
	if err != nil {
		return perr
	}

	perr.Code = body.Code
	if body.Text != "" {
		perr.Message = body.Text
	}

	return perr
}

// IsProtocolError checks if the error is a ProtocolError.
func IsProtocolError(err error) bool {
	perr := &ProtocolError{}

	return errors.As(err, &perr)
}

// IsNotFound checks if the error is a 404 from the server.
func IsNotFound(err error) bool {
	perr := &ProtocolError{}
	if errors.As(err, &perr) {
		return perr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsCapabilityError checks if the error is a CapabilityError.
func IsCapabilityError(err error) bool {
	cerr := &CapabilityError{}

	return errors.As(err, &cerr)
}

// IsStateError checks if the error is a StateError.
func IsStateError(err error) bool {
	serr := &StateError{}

	return errors.As(err, &serr)
}
