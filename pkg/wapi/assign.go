package wapi

import "fmt"

// Assign copies decoded response data into the object.
//
// data is a mapping or a list; a list assigns its first element. Only keys
// naming fields of the kind are copied, plus _ref while the object is
// unidentified. A key is present when it exists with a non-null value, so
// false, 0, "" and empty lists from the server overwrite local values.
// Mappings carrying a _ref are materialized as nested objects of the kind
// the registry resolves for them; nothing here reaches the transport.
// List items that are mappings without a _ref, such as DHCP options, are
// kept as plain mappings rather than dropped, so a fetch then save round
// trip preserves them.
func (o *Object) Assign(data interface{}) {
	logger := o.mapper.logger

	switch v := data.(type) {
	case nil:
		return
	case []interface{}:
		if len(v) == 0 {
			return
		}

		o.Assign(v[0])
	case map[string]interface{}:
		o.assignMap(v)
	default:
		logger.Error("Unhandled response shape", map[string]interface{}{
			"kind": o.kind.Type,
			"type": fmt.Sprintf("%T", data),
		})
	}
}

func (o *Object) assignMap(data map[string]interface{}) {
	if o.ref == "" {
		if ref, ok := data[RefField].(string); ok && ref != "" {
			o.ref = ref
		}
	}

	for _, f := range o.kind.Fields {
		raw, ok := data[f.Name]
		if !ok || raw == nil {
			continue
		}

		o.values[f.Name] = o.materialize(f.Name, raw)
		o.set[f.Name] = true
	}
}

// materialize converts a raw field value, resolving embedded references.
func (o *Object) materialize(field string, raw interface{}) interface{} {
	switch v := raw.(type) {
	case []interface{}:
		items := make([]interface{}, 0, len(v))

		for _, item := range v {
			mapping, isMap := item.(map[string]interface{})
			if !isMap {
				items = append(items, item)

				continue
			}

			ref, hasRef := mapping[RefField].(string)
			if !hasRef {
				// A struct value such as a DHCP option, not a reference.
				items = append(items, mapping)

				continue
			}

			nested, ok := o.nested(field, ref, mapping)
			if ok {
				items = append(items, nested)
			}
		}

		return items
	case map[string]interface{}:
		ref, hasRef := v[RefField].(string)
		if !hasRef {
			return v
		}

		if nested, ok := o.nested(field, ref, v); ok {
			return nested
		}

		return v
	default:
		return raw
	}
}

func (o *Object) nested(field, ref string, data map[string]interface{}) (*Object, bool) {
	kind, ok := o.mapper.registry.Resolve(ref)
	if !ok {
		o.mapper.logger.Warn("Unresolvable nested reference", map[string]interface{}{
			"kind":  o.kind.Type,
			"field": field,
			"ref":   ref,
		})

		return nil, false
	}

	return o.mapper.build(kind, data), true
}
