package wapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// RefField is the key WAPI uses for an object's reference identifier.
const RefField = "_ref"

// ReturnFieldsParam is the query directive naming the fields a GET returns.
const ReturnFieldsParam = "_return_fields"

// Operation is a lifecycle operation a kind may support.
type Operation string

// Lifecycle operations.
const (
	OpFetch  Operation = "fetch"
	OpSave   Operation = "save"
	OpDelete Operation = "delete"
)

// Values holds field values keyed by field name.
type Values map[string]interface{}

// Field declares one attribute of a kind and its default value.
type Field struct {
	Name    string      `json:"name"              yaml:"name"              toml:"name"`
	Default interface{} `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
}

// Kind is the field catalog of one WAPI object type.
type Kind struct {
	// Type is the WAPI object type, e.g. "record:host". It is both the
	// collection path and the discriminator embedded in reference ids.
	Type string
	// Aliases are additional discriminators that resolve to this kind.
	Aliases []string
	// Fields is the ordered attribute surface of the kind.
	Fields []Field
	// SearchBy names the keys usable as search criteria. Names that are not
	// fields are accepted as search-only values at construction.
	SearchBy []string
	// ReturnIgnore names fields never requested in _return_fields.
	ReturnIgnore []string
	// SaveIgnore names fields never sent in a save payload.
	SaveIgnore []string
	// Supports lists the lifecycle operations the kind allows.
	Supports []Operation
	// ReprKeys are the fields rendered by Object.String.
	ReprKeys []string
	// SaveAs, when set, is the compact form used when an object of this
	// kind is embedded in a parent's save payload.
	SaveAs func(obj *Object) map[string]interface{}
}

// Supported reports whether the kind declares op.
func (k *Kind) Supported(op Operation) bool {
	return slices.Contains(k.Supports, op)
}

// HasField reports whether name is a declared field of the kind.
func (k *Kind) HasField(name string) bool {
	return k.fieldIndex(name) >= 0
}

// FieldNames returns the field names in catalog order.
func (k *Kind) FieldNames() []string {
	names := make([]string, 0, len(k.Fields))
	for _, f := range k.Fields {
		names = append(names, f.Name)
	}

	return names
}

// ReturnFields returns the comma-joined _return_fields directive.
func (k *Kind) ReturnFields() string {
	out := ""

	for _, f := range k.Fields {
		if slices.Contains(k.ReturnIgnore, f.Name) {
			continue
		}

		if out != "" {
			out += ","
		}

		out += f.Name
	}

	return out
}

// Discriminators returns every string the kind is registered under.
func (k *Kind) Discriminators() []string {
	return append([]string{k.Type}, k.Aliases...)
}

func (k *Kind) fieldIndex(name string) int {
	for i, f := range k.Fields {
		if f.Name == name {
			return i
		}
	}

	return -1
}

// Response is the result of a transport round trip.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Error is only populated when a response is handed to interceptors
	// after a transport failure.
	Error error
}

// Decode unmarshals the body as JSON into v.
func (r *Response) Decode(v interface{}) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// Raw returns the undecoded body.
func (r *Response) Raw() string {
	return string(r.Body)
}

// Transport performs the HTTP round trips the mapper needs.
// Paths are relative to the WAPI base URL. A non-2xx status is not an
// error at this level; err is reserved for failures to complete the call.
type Transport interface {
	Get(ctx context.Context, path string, query, extra url.Values) (*Response, error)
	Post(ctx context.Context, path string, body interface{}) (*Response, error)
	Put(ctx context.Context, path string, body interface{}) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
