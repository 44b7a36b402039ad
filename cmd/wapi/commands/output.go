package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func outputFormat() string {
	output := viper.GetString("output")
	if output == "" {
		return constants.FormatTable
	}

	return output
}

func encode(w io.Writer, data interface{}, output string) (bool, error) {
	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(data)
		if err != nil {
			return true, fmt.Errorf("failed to encode JSON: %w", err)
		}

		return true, nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(w).Encode(data)
		if err != nil {
			return true, fmt.Errorf("failed to encode YAML: %w", err)
		}

		return true, nil
	case constants.FormatTable:
		return false, nil
	default:
		return true, fmt.Errorf("%w: %q", constants.ErrInvalidOutput, output)
	}
}

// renderObject prints one object. Tables list every field with a value.
func renderObject(w io.Writer, obj *wapi.Object, output string) error {
	done, err := encode(w, obj, output)
	if done {
		return err
	}

	exported := obj.Export()

	keys := make([]string, 0, len(exported))
	for k, v := range exported {
		if v != nil {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	for _, k := range keys {
		_ = table.Append([]string{k, formatValue(exported[k])})
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderObjects prints a list of objects of one kind, one row each, with
// the kind's display keys as columns.
func renderObjects(w io.Writer, kind *wapi.Kind, objs []*wapi.Object, output string) error {
	done, err := encode(w, objs, output)
	if done {
		return err
	}

	columns := append([]string{}, kind.ReprKeys...)
	columns = append(columns, wapi.RefField)

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, obj := range objs {
		row := make([]string, len(columns))

		for i, c := range columns {
			if c == wapi.RefField {
				row[i] = obj.Ref()

				continue
			}

			v, _ := obj.Get(c)
			row[i] = formatValue(export(v))
		}

		_ = table.Append(row)
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func export(v interface{}) interface{} {
	if obj, ok := v.(*wapi.Object); ok {
		return obj.Export()
	}

	if list, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(list))
		for i, item := range list {
			out[i] = export(item)
		}

		return out
	}

	return v
}

// formatValue renders a field value for a table cell. Address lists show
// just the addresses.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, formatItem(item))
		}

		return strings.Join(parts, ", ")
	case map[string]interface{}:
		return formatItem(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatItem(item interface{}) string {
	if m, ok := item.(map[string]interface{}); ok {
		for _, key := range []string{"ipv4addr", "ipv6addr", "ip_address"} {
			if s, ok := m[key].(string); ok {
				return s
			}
		}

		data, err := json.Marshal(m)
		if err == nil {
			return string(data)
		}
	}

	return fmt.Sprintf("%v", item)
}
