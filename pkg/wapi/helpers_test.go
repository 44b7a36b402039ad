package wapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/fivetwenty-io/wapi/pkg/wapi"
)

type call struct {
	Method string
	Path   string
	Query  url.Values
	Extra  url.Values
	Body   interface{}
}

// fakeTransport replays queued responses in order and records every call.
// With the queue empty it answers 200 with an empty list.
type fakeTransport struct {
	mu        sync.Mutex
	responses []*wapi.Response
	calls     []call
	err       error
}

func (f *fakeTransport) queue(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses = append(f.responses, &wapi.Response{
		StatusCode: status,
		Headers:    http.Header{},
		Body:       []byte(body),
	})
}

func (f *fakeTransport) queueJSON(status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	f.queue(status, string(data))
}

func (f *fakeTransport) record(c call) (*wapi.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, c)

	if f.err != nil {
		return nil, f.err
	}

	if len(f.responses) == 0 {
		return &wapi.Response{StatusCode: http.StatusOK, Body: []byte("[]")}, nil
	}

	resp := f.responses[0]
	f.responses = f.responses[1:]

	return resp, nil
}

func (f *fakeTransport) Get(_ context.Context, path string, query, extra url.Values) (*wapi.Response, error) {
	return f.record(call{Method: http.MethodGet, Path: path, Query: query, Extra: extra})
}

func (f *fakeTransport) Post(_ context.Context, path string, body interface{}) (*wapi.Response, error) {
	return f.record(call{Method: http.MethodPost, Path: path, Body: body})
}

func (f *fakeTransport) Put(_ context.Context, path string, body interface{}) (*wapi.Response, error) {
	return f.record(call{Method: http.MethodPut, Path: path, Body: body})
}

func (f *fakeTransport) Delete(_ context.Context, path string) (*wapi.Response, error) {
	return f.record(call{Method: http.MethodDelete, Path: path})
}

func (f *fakeTransport) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]call(nil), f.calls...)
}

// recordingLogger keeps every message so tests can assert on warnings.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, level+": "+msg)
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.add("error", msg) }

func (l *recordingLogger) has(entry string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.messages {
		if m == entry {
			return true
		}
	}

	return false
}

func hostAddrKind() *wapi.Kind {
	return &wapi.Kind{
		Type:    "record:host_ipv4addr",
		Aliases: []string{"host_ipv4addr"},
		Fields: []wapi.Field{
			{Name: "configure_for_dhcp"},
			{Name: "host"},
			{Name: "ipv4addr"},
			{Name: "mac"},
		},
		SearchBy:   []string{"ipv4addr"},
		SaveIgnore: []string{"host"},
		Supports:   []wapi.Operation{wapi.OpFetch},
		ReprKeys:   []string{"ipv4addr"},
		SaveAs: func(obj *wapi.Object) map[string]interface{} {
			return map[string]interface{}{"ipv4addr": obj.GetString("ipv4addr")}
		},
	}
}

func hostKind() *wapi.Kind {
	return &wapi.Kind{
		Type:    "record:host",
		Aliases: []string{"host"},
		Fields: []wapi.Field{
			{Name: "comment"},
			{Name: "configure_for_dns", Default: true},
			{Name: "ipv4addrs", Default: []interface{}{}},
			{Name: "name"},
			{Name: "ttl"},
			{Name: "zone"},
		},
		SearchBy:     []string{"name", "ipv4addr", "mac"},
		SaveIgnore:   []string{"zone"},
		Supports:     []wapi.Operation{wapi.OpFetch, wapi.OpSave, wapi.OpDelete},
		ReprKeys:     []string{"name", "ipv4addrs"},
		ReturnIgnore: nil,
	}
}

func networkKind() *wapi.Kind {
	return &wapi.Kind{
		Type: "network",
		Fields: []wapi.Field{
			{Name: "comment"},
			{Name: "network"},
			{Name: "network_container"},
			{Name: "network_view", Default: "default"},
			{Name: "options", Default: []interface{}{}},
			{Name: "template"},
		},
		SearchBy:     []string{"comment", "ipv4addr", "network", "network_container", "network_view"},
		ReturnIgnore: []string{"template"},
		Supports:     []wapi.Operation{wapi.OpFetch, wapi.OpSave},
	}
}

func newTestMapper(opts ...wapi.Option) (*wapi.Mapper, *fakeTransport, *recordingLogger) {
	transport := &fakeTransport{}
	logger := &recordingLogger{}
	registry := wapi.NewRegistry(hostKind(), hostAddrKind(), networkKind())

	all := append([]wapi.Option{wapi.WithRegistry(registry), wapi.WithLogger(logger)}, opts...)

	m, err := wapi.NewMapper(transport, all...)
	if err != nil {
		panic(err)
	}

	return m, transport, logger
}
