package wapi

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Object is a local copy of one WAPI object, kept in sync with the server
// through Fetch, Save and Delete. An Object must not be used from several
// goroutines at once.
type Object struct {
	mapper *Mapper
	kind   *Kind

	ref       string
	values    Values
	set       map[string]bool
	overrides Values
	criteria  Values
}

func newObject(m *Mapper, kind *Kind) *Object {
	obj := &Object{
		mapper:    m,
		kind:      kind,
		overrides: make(Values),
	}
	obj.reset()

	return obj
}

// reset restores every field to a fresh copy of its default.
func (o *Object) reset() {
	o.values = make(Values, len(o.kind.Fields))
	o.set = make(map[string]bool)

	for _, f := range o.kind.Fields {
		o.values[f.Name] = cloneValue(f.Default)
	}
}

// Kind returns the object's field catalog.
func (o *Object) Kind() *Kind {
	return o.kind
}

// Ref returns the reference id, or "" when the object is unidentified.
func (o *Object) Ref() string {
	return o.ref
}

// Identified reports whether the object is known to exist on the server.
func (o *Object) Identified() bool {
	return o.ref != ""
}

// Get returns the current value of a field. ok is false for names that
// are not fields of the kind.
func (o *Object) Get(name string) (interface{}, bool) {
	if !o.kind.HasField(name) {
		return nil, false
	}

	return o.values[name], true
}

// IsSet reports whether a field was set by the caller or by the server.
func (o *Object) IsSet(name string) bool {
	return o.set[name]
}

// Set assigns a field value and marks it for inclusion in saves.
func (o *Object) Set(name string, value interface{}) error {
	if !o.kind.HasField(name) {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, o.kind.Type, name)
	}

	o.values[name] = value
	o.set[name] = true

	return nil
}

// Unset restores a field to its default and drops it from saves.
func (o *Object) Unset(name string) error {
	i := o.kind.fieldIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, o.kind.Type, name)
	}

	o.values[name] = cloneValue(o.kind.Fields[i].Default)
	delete(o.set, name)

	return nil
}

// GetString returns a string field, or "" if it holds anything else.
func (o *Object) GetString(name string) string {
	s, _ := o.values[name].(string)

	return s
}

// GetBool returns a bool field, or false if it holds anything else.
func (o *Object) GetBool(name string) bool {
	b, _ := o.values[name].(bool)

	return b
}

// GetInt returns a numeric field as an int.
func (o *Object) GetInt(name string) (int, bool) {
	switch v := o.values[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GetList returns a sequence field, or nil if it holds anything else.
func (o *Object) GetList(name string) []interface{} {
	l, _ := o.values[name].([]interface{})

	return l
}

// Objects returns the nested objects held by a sequence field.
func (o *Object) Objects(name string) []*Object {
	var out []*Object

	for _, item := range o.GetList(name) {
		if nested, ok := item.(*Object); ok {
			out = append(out, nested)
		}
	}

	return out
}

// Values returns a shallow copy of every field value.
func (o *Object) Values() Values {
	out := make(Values, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}

	return out
}

// SearchCriteria returns the criteria used by the last fetch, or computed
// at construction if the object has not been fetched.
func (o *Object) SearchCriteria() Values {
	out := make(Values, len(o.criteria))
	for k, v := range o.criteria {
		out[k] = v
	}

	return out
}

// BuildSearchCriteria builds the search query for the object. For each
// searchable key the object's own value wins when it has been set and is
// non-empty; otherwise a non-empty override is used.
func (o *Object) BuildSearchCriteria(overrides Values) Values {
	criteria := make(Values)

	for _, key := range o.kind.SearchBy {
		if o.set[key] && !isEmpty(o.values[key]) {
			criteria[key] = o.values[key]

			continue
		}

		if v, ok := overrides[key]; ok && !isEmpty(v) {
			criteria[key] = v
		}
	}

	return criteria
}

// String renders the object with its kind's ReprKeys.
func (o *Object) String() string {
	keys := o.kind.ReprKeys
	if len(keys) == 0 {
		keys = []string{RefField}
	}

	parts := make([]string, 0, len(keys))

	for _, key := range keys {
		var v interface{}
		if key == RefField {
			v = o.ref
		} else {
			v = o.values[key]
		}

		parts = append(parts, fmt.Sprintf("%s=%v", key, v))
	}

	return fmt.Sprintf("<%s %s>", o.kind.Type, strings.Join(parts, " "))
}

// isEmpty reports whether v counts as absent. false and 0 are values.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	default:
		return false
	}
}

// queryValue renders a criteria value as a query parameter.
func queryValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// cloneValue deep-copies JSON-shaped defaults so instances never share
// a container.
func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}

		return out
	case []string:
		return slices.Clone(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}

		return out
	default:
		return v
	}
}

func containsString(list []string, s string) bool {
	return slices.Contains(list, s)
}
