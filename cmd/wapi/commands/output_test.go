package commands

import (
	"bytes"
	"testing"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "app1.example.com", want: "app1.example.com"},
		{name: "bool", value: true, want: "true"},
		{name: "number", value: float64(3600), want: "3600"},
		{
			name: "address list",
			value: []interface{}{
				map[string]interface{}{"ipv4addr": "10.0.0.10", "_ref": "record:host_ipv4addr/x"},
				map[string]interface{}{"ipv6addr": "2001:db8::1"},
			},
			want: "10.0.0.10, 2001:db8::1",
		},
		{
			name:  "option",
			value: map[string]interface{}{"name": "routers", "value": "10.0.0.1"},
			want:  `{"name":"routers","value":"10.0.0.1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer

	done, err := encode(&buf, map[string]string{"key": "value"}, constants.FormatJSON)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, buf.String(), `"key": "value"`)

	buf.Reset()

	done, err = encode(&buf, map[string]string{"key": "value"}, constants.FormatYAML)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "key: value\n", buf.String())

	done, err = encode(&buf, nil, constants.FormatTable)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = encode(&buf, nil, "xml")
	require.ErrorIs(t, err, constants.ErrInvalidOutput)
	assert.True(t, done)
}

func TestRenderKinds(t *testing.T) {
	var buf bytes.Buffer

	registry, err := loadRegistry()
	require.NoError(t, err)

	require.NoError(t, renderKinds(&buf, registry, constants.FormatJSON))
	assert.Contains(t, buf.String(), `"type": "record:host"`)
	assert.Contains(t, buf.String(), `"type": "ipv4address"`)
}
