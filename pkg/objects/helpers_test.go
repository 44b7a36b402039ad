package objects_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/fivetwenty-io/wapi/pkg/objects"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	body   interface{}
}

// stubTransport serves JSON documents keyed by "METHOD path".
type stubTransport struct {
	routes map[string]*wapi.Response
	calls  []recorded
}

func newStubTransport() *stubTransport {
	return &stubTransport{routes: make(map[string]*wapi.Response)}
}

func (s *stubTransport) on(method, path string, status int, doc interface{}) {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}

	s.routes[method+" "+path] = &wapi.Response{StatusCode: status, Body: data}
}

func (s *stubTransport) serve(method, path string, query url.Values, body interface{}) (*wapi.Response, error) {
	s.calls = append(s.calls, recorded{method: method, path: path, query: query, body: body})

	if resp, ok := s.routes[method+" "+path]; ok {
		return resp, nil
	}

	return &wapi.Response{StatusCode: http.StatusNotFound, Body: []byte(`{"text": "no route"}`)}, nil
}

func (s *stubTransport) Get(_ context.Context, path string, query, _ url.Values) (*wapi.Response, error) {
	return s.serve(http.MethodGet, path, query, nil)
}

func (s *stubTransport) Post(_ context.Context, path string, body interface{}) (*wapi.Response, error) {
	return s.serve(http.MethodPost, path, nil, body)
}

func (s *stubTransport) Put(_ context.Context, path string, body interface{}) (*wapi.Response, error) {
	return s.serve(http.MethodPut, path, nil, body)
}

func (s *stubTransport) Delete(_ context.Context, path string) (*wapi.Response, error) {
	return s.serve(http.MethodDelete, path, nil, nil)
}

func newMapper(t *testing.T) (*wapi.Mapper, *stubTransport) {
	t.Helper()

	transport := newStubTransport()

	m, err := wapi.NewMapper(transport, wapi.WithRegistry(objects.DefaultRegistry()))
	require.NoError(t, err)

	return m, transport
}

const (
	hostRef = "record:host/ZG5zLmhvc3QkLl9kZWZhdWx0LmNvbS5leGFtcGxlLmFwcDE:app1.example.com/default"
	v4Ref   = "record:host_ipv4addr/ZG5zLmhvc3RfYWRkcmVzcyQuX2RlZmF1bHQuY29tLmV4YW1wbGUuYXBwMS4xMC4wLjAuMTAu:10.0.0.10/app1.example.com/default"
	v6Ref   = "record:host_ipv6addr/ZG5zLmhvc3RfYWRkcmVzcyQuX2RlZmF1bHQuY29tLmV4YW1wbGUuYXBwMS5mZDAwOjoxMC4:fd00%3A%3A10/app1.example.com/default"
	netRef  = "network/ZG5zLm5ldHdvcmskMTAuMC4wLjAvMjQvMA:10.0.0.0/24/default"
)

func hostDoc() map[string]interface{} {
	return map[string]interface{}{
		"_ref":              hostRef,
		"name":              "app1.example.com",
		"configure_for_dns": true,
		"view":              "default",
		"zone":              "example.com",
		"dns_name":          "app1.example.com",
		"ipv4addrs": []interface{}{
			map[string]interface{}{
				"_ref":               v4Ref,
				"configure_for_dhcp": false,
				"host":               "app1.example.com",
				"ipv4addr":           "10.0.0.10",
			},
		},
		"ipv6addrs": []interface{}{
			map[string]interface{}{
				"_ref":               v6Ref,
				"configure_for_dhcp": false,
				"host":               "app1.example.com",
				"ipv6addr":           "fd00::10",
			},
		},
	}
}
