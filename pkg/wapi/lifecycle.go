package wapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// path is the reference id when identified, else the collection.
func (o *Object) path() string {
	if o.ref != "" {
		return o.ref
	}

	return o.kind.Type
}

// Fetch loads the object from the server by reference id, or by its search
// criteria when unidentified. It reports whether the server returned any
// data; an empty result leaves the object untouched.
func (o *Object) Fetch(ctx context.Context) (bool, error) {
	if !o.kind.Supported(OpFetch) {
		return false, &CapabilityError{Kind: o.kind.Type, Operation: OpFetch}
	}

	o.criteria = o.BuildSearchCriteria(o.overrides)
	path := o.path()

	query := url.Values{}
	for key, value := range o.criteria {
		query.Set(key, queryValue(value))
	}

	extra := url.Values{ReturnFieldsParam: []string{o.kind.ReturnFields()}}

	o.mapper.logger.Debug("Fetching object", map[string]interface{}{
		"path":     path,
		"criteria": query.Encode(),
	})

	resp, err := o.mapper.transport.Get(ctx, path, query, extra)
	if err != nil {
		return false, fmt.Errorf("fetching %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload interface{}

		err = resp.Decode(&payload)
		if err != nil {
			return false, fmt.Errorf("fetching %s: %w", path, err)
		}

		if list, ok := payload.([]interface{}); ok && len(list) > 1 {
			o.mapper.logger.Warn("Search matched several objects, using the first", map[string]interface{}{
				"path":    path,
				"matches": len(list),
			})
		}

		o.Assign(payload)

		return !isEmpty(payload), nil
	case resp.StatusCode >= http.StatusBadRequest:
		return false, ParseProtocolError(http.MethodGet, path, resp)
	default:
		return false, nil
	}
}

// SavePayload returns the body Save would send, without the _ref key.
//
// Fields in SaveIgnore, fields never set, and nil values are left out.
// Explicit false, zero and empty-string values are kept. Nested objects
// are replaced by their kind's SaveAs form or by their reference id.
func (o *Object) SavePayload() Values {
	payload := make(Values)

	for _, f := range o.kind.Fields {
		if !o.set[f.Name] || slices.Contains(o.kind.SaveIgnore, f.Name) {
			continue
		}

		switch v := o.values[f.Name].(type) {
		case nil:
			continue
		case []interface{}:
			items := make([]interface{}, 0, len(v))

			for _, item := range v {
				if out, ok := o.saveItem(f.Name, item); ok {
					items = append(items, out)
				}
			}

			payload[f.Name] = items
		case *Object:
			if out, ok := o.saveItem(f.Name, v); ok {
				payload[f.Name] = out
			}
		default:
			payload[f.Name] = v
		}
	}

	return payload
}

func (o *Object) saveItem(field string, item interface{}) (interface{}, bool) {
	switch v := item.(type) {
	case map[string]interface{}:
		return v, true
	case string, bool, float64, int, int64:
		return v, true
	case *Object:
		if v.kind.SaveAs != nil {
			return v.kind.SaveAs(v), true
		}

		if v.ref != "" {
			return v.ref, true
		}
	}

	o.mapper.logger.Warn("Cannot convert value for save", map[string]interface{}{
		"kind":  o.kind.Type,
		"field": field,
		"value": fmt.Sprintf("%v", item),
	})

	return nil, false
}

// Save creates the object on the server when unidentified, or updates it
// otherwise, then fetches it again to pick up server-computed fields.
func (o *Object) Save(ctx context.Context) (bool, error) {
	if !o.kind.Supported(OpSave) {
		return false, &CapabilityError{Kind: o.kind.Type, Operation: OpSave}
	}

	payload := o.SavePayload()
	path := o.path()
	action := ActionCreated
	method := http.MethodPost

	var (
		resp *Response
		err  error
	)

	if o.ref == "" {
		resp, err = o.mapper.transport.Post(ctx, path, payload)
	} else {
		action = ActionUpdated
		method = http.MethodPut
		payload[RefField] = o.ref
		resp, err = o.mapper.transport.Put(ctx, path, payload)
	}

	if err != nil {
		return false, fmt.Errorf("saving %s: %w", path, err)
	}

	o.mapper.logger.Debug("Saved object", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": resp.StatusCode,
	})

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return false, ParseProtocolError(method, path, resp)
	}

	// WAPI answers writes with the object's (possibly new) reference id.
	var ref string
	if resp.Decode(&ref) == nil && ref != "" {
		o.ref = ref
	}

	if o.ref == "" && len(o.BuildSearchCriteria(o.overrides)) == 0 {
		o.mapper.logger.Warn("Saved object cannot be located for refresh", map[string]interface{}{
			"kind": o.kind.Type,
		})
	} else {
		_, err = o.Fetch(ctx)
		if err != nil {
			return false, fmt.Errorf("refreshing %s after save: %w", o.kind.Type, err)
		}
	}

	o.notify(ctx, action, o.ref)

	return true, nil
}

// Delete removes the object from the server. On success the object
// becomes unidentified and every field returns to its default.
func (o *Object) Delete(ctx context.Context) (bool, error) {
	if o.ref == "" {
		return false, &StateError{Kind: o.kind.Type, Operation: OpDelete, Err: ErrNotIdentified}
	}

	if !o.kind.Supported(OpDelete) {
		return false, &CapabilityError{Kind: o.kind.Type, Operation: OpDelete}
	}

	ref := o.ref

	resp, err := o.mapper.transport.Delete(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", ref, err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, ParseProtocolError(http.MethodDelete, ref, resp)
	}

	o.ref = ""
	o.reset()
	o.overrides = make(Values)
	o.criteria = make(Values)

	o.notify(ctx, ActionDeleted, ref)

	return true, nil
}
