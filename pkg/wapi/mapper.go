package wapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Mapper binds a transport, a type registry and a logger, and builds the
// objects that share them.
type Mapper struct {
	transport Transport
	registry  *Registry
	logger    Logger
	observer  Observer
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithRegistry sets the registry used to resolve nested objects.
func WithRegistry(registry *Registry) Option {
	return func(m *Mapper) {
		m.registry = registry
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver sets an observer notified after successful saves and deletes.
func WithObserver(observer Observer) Option {
	return func(m *Mapper) {
		m.observer = observer
	}
}

// NewMapper creates a mapper over transport.
func NewMapper(transport Transport, opts ...Option) (*Mapper, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	m := &Mapper{
		transport: transport,
		logger:    noopLogger{},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = NewRegistry()
	}

	return m, nil
}

// Registry returns the mapper's type registry.
func (m *Mapper) Registry() *Registry {
	return m.registry
}

// New builds an object of kind without contacting the server.
//
// values may name any field of the kind, and any SearchBy key that is not
// a field (such keys only feed the search criteria). Other names are
// rejected with ErrUnknownField.
func (m *Mapper) New(kind *Kind, ref string, values Values) (*Object, error) {
	if kind == nil {
		return nil, ErrNilKind
	}

	obj := newObject(m, kind)
	obj.ref = ref

	for name, value := range values {
		switch {
		case kind.HasField(name):
			obj.values[name] = value
			obj.set[name] = true
		case containsString(kind.SearchBy, name):
			obj.overrides[name] = value
		default:
			return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, kind.Type, name)
		}
	}

	obj.criteria = obj.BuildSearchCriteria(obj.overrides)

	return obj, nil
}

// Load builds an object and, when it has a reference id or non-empty
// search criteria, fetches it. A fetch that matches nothing leaves the
// object unidentified without error.
func (m *Mapper) Load(ctx context.Context, kind *Kind, ref string, values Values) (*Object, error) {
	obj, err := m.New(kind, ref, values)
	if err != nil {
		return nil, err
	}

	if obj.ref == "" && len(obj.criteria) == 0 {
		return obj, nil
	}

	_, err = obj.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	return obj, nil
}

// LoadRef fetches the object a reference id points to, resolving its kind
// through the registry.
func (m *Mapper) LoadRef(ctx context.Context, ref string) (*Object, error) {
	if ref == "" {
		return nil, ErrEmptyRef
	}

	kind, ok := m.registry.Resolve(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, ref)
	}

	return m.Load(ctx, kind, ref, nil)
}

// Search returns every object of kind matching criteria.
func (m *Mapper) Search(ctx context.Context, kind *Kind, criteria Values) ([]*Object, error) {
	if kind == nil {
		return nil, ErrNilKind
	}

	if !kind.Supported(OpFetch) {
		return nil, &CapabilityError{Kind: kind.Type, Operation: OpFetch}
	}

	query := url.Values{}

	for name, value := range criteria {
		if !isEmpty(value) {
			query.Set(name, queryValue(value))
		}
	}

	extra := url.Values{ReturnFieldsParam: []string{kind.ReturnFields()}}

	resp, err := m.transport.Get(ctx, kind.Type, query, extra)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", kind.Type, err)
	}

	switch {
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, ParseProtocolError(http.MethodGet, kind.Type, resp)
	case resp.StatusCode != http.StatusOK:
		return []*Object{}, nil
	}

	var payload interface{}

	err = resp.Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", kind.Type, err)
	}

	var items []interface{}

	switch v := payload.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items = []interface{}{v}
	}

	out := make([]*Object, 0, len(items))

	for _, item := range items {
		obj := newObject(m, kind)
		obj.Assign(item)
		out = append(out, obj)
	}

	return out, nil
}

// build materializes a nested object from an already-fetched mapping.
// It never reaches the transport.
func (m *Mapper) build(kind *Kind, data map[string]interface{}) *Object {
	obj := newObject(m, kind)
	obj.Assign(data)

	return obj
}
