package objects

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"gopkg.in/yaml.v3"
)

// Static errors for err113 compliance.
var (
	ErrInvalidCatalog       = errors.New("invalid catalog")
	ErrUnsupportedExtension = errors.New("unsupported catalog file extension")
)

// Catalog is the on-disk form of additional kinds.
//
//	kinds:
//	  - type: record:cname
//	    aliases: [cname]
//	    fields:
//	      - name: canonical
//	      - name: name
//	      - name: use_ttl
//	        default: false
//	    search_by: [name, canonical]
//	    supports: [fetch, save, delete]
type Catalog struct {
	Kinds []KindSpec `json:"kinds" yaml:"kinds" toml:"kinds"`
}

// KindSpec describes one kind in a catalog file.
type KindSpec struct {
	Type         string       `json:"type"                    yaml:"type"                    toml:"type"`
	Aliases      []string     `json:"aliases,omitempty"       yaml:"aliases,omitempty"       toml:"aliases,omitempty"`
	Fields       []wapi.Field `json:"fields"                  yaml:"fields"                  toml:"fields"`
	SearchBy     []string     `json:"search_by,omitempty"     yaml:"search_by,omitempty"     toml:"search_by,omitempty"`
	ReturnIgnore []string     `json:"return_ignore,omitempty" yaml:"return_ignore,omitempty" toml:"return_ignore,omitempty"`
	SaveIgnore   []string     `json:"save_ignore,omitempty"   yaml:"save_ignore,omitempty"   toml:"save_ignore,omitempty"`
	Supports     []string     `json:"supports,omitempty"      yaml:"supports,omitempty"      toml:"supports,omitempty"`
	ReprKeys     []string     `json:"repr_keys,omitempty"     yaml:"repr_keys,omitempty"     toml:"repr_keys,omitempty"`
}

// LoadKinds reads kinds from a .yaml, .yml, .json or .toml catalog file.
func LoadKinds(path string) ([]*wapi.Kind, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var catalog Catalog

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &catalog)
	case ".json":
		err = json.Unmarshal(data, &catalog)
	case ".toml":
		err = toml.Unmarshal(data, &catalog)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	return catalog.Build()
}

// Build validates the catalog and converts it to kinds.
func (c *Catalog) Build() ([]*wapi.Kind, error) {
	kinds := make([]*wapi.Kind, 0, len(c.Kinds))

	for i, spec := range c.Kinds {
		kind, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("kind %d: %w", i, err)
		}

		kinds = append(kinds, kind)
	}

	return kinds, nil
}

func (s KindSpec) build() (*wapi.Kind, error) {
	if s.Type == "" {
		return nil, fmt.Errorf("%w: type is required", ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(s.Fields))
	fields := make([]wapi.Field, 0, len(s.Fields))

	for _, f := range s.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: %s has a field without a name", ErrInvalidCatalog, s.Type)
		}

		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %s declares %q twice", ErrInvalidCatalog, s.Type, f.Name)
		}

		seen[f.Name] = true
		fields = append(fields, wapi.Field{Name: f.Name, Default: normalize(f.Default)})
	}

	supports := make([]wapi.Operation, 0, len(s.Supports))

	for _, op := range s.Supports {
		switch wapi.Operation(op) {
		case wapi.OpFetch, wapi.OpSave, wapi.OpDelete:
			supports = append(supports, wapi.Operation(op))
		default:
			return nil, fmt.Errorf("%w: %s supports unknown operation %q", ErrInvalidCatalog, s.Type, op)
		}
	}

	return &wapi.Kind{
		Type:         s.Type,
		Aliases:      s.Aliases,
		Fields:       fields,
		SearchBy:     s.SearchBy,
		ReturnIgnore: s.ReturnIgnore,
		SaveIgnore:   s.SaveIgnore,
		Supports:     supports,
		ReprKeys:     s.ReprKeys,
	}, nil
}

// normalize converts decoded defaults to the shapes encoding/json produces,
// so values from any catalog format compare equal to server data.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}

		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}

		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}

		return out
	default:
		return v
	}
}
