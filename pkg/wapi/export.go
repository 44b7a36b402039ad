package wapi

import "encoding/json"

// Export returns the object as plain data: its reference id under "_ref"
// and every field value, with nested objects exported in turn.
func (o *Object) Export() map[string]interface{} {
	out := make(map[string]interface{}, len(o.values)+1)
	if o.ref != "" {
		out[RefField] = o.ref
	}

	for k, v := range o.values {
		out[k] = export(v)
	}

	return out
}

func export(v interface{}) interface{} {
	switch t := v.(type) {
	case *Object:
		return t.Export()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = export(item)
		}

		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = export(item)
		}

		return out
	default:
		return v
	}
}

// MarshalJSON encodes the exported form.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Export())
}

// MarshalYAML encodes the exported form.
func (o *Object) MarshalYAML() (interface{}, error) {
	return o.Export(), nil
}
