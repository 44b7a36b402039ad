package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	wapihttp "github.com/fivetwenty-io/wapi/internal/http"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

func (l *MockLogger) messages(prefix string) []string {
	var out []string

	for _, entry := range l.logs {
		if msg, _ := entry["msg"].(string); strings.HasPrefix(msg, prefix) {
			out = append(out, msg)
		}
	}

	return out
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/wapi/v2.7/network", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			username, password, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "admin", username)
			assert.Equal(t, "infoblox", password)

			response := []map[string]string{{"_ref": "network/ZG5z:10.0.0.0/24/default", "network": "10.0.0.0/24"}}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL+"/wapi/v2.7/", wapihttp.WithBasicAuth("admin", "infoblox"))

		req := &wapihttp.Request{
			Method: "GET",
			Path:   "network",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result []map[string]string

		err = resp.Decode(&result)
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "10.0.0.0/24", result[0]["network"])
	})

	t.Run("reference id path", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/wapi/v2.7/record:host/ZG5zLmhvc3Q:www.example.com/default", request.URL.Path)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL + "/wapi/v2.7")

		resp, err := client.Get(context.Background(), "record:host/ZG5zLmhvc3Q:www.example.com/default", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/network", request.URL.Path)
			assert.Equal(t, "_return_fields=comment%2Cnetwork&network=10.0.0.0%2F24", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL)

		req := &wapihttp.Request{
			Method: "GET",
			Path:   "network",
			Query: url.Values{
				"network":        []string{"10.0.0.0/24"},
				"_return_fields": []string{"comment,network"},
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]interface{}

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "www.example.com", body["name"])
			assert.Equal(t, false, body["configure_for_dns"])

			writer.WriteHeader(http.StatusCreated)
			_, _ = writer.Write([]byte(`"record:host/ZG5z:www.example.com/default"`))
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL)

		req := &wapihttp.Request{
			Method: "POST",
			Path:   "record:host",
			Body:   wapi.Values{"name": "www.example.com", "configure_for_dns": false},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)

		var ref string
		require.NoError(t, resp.Decode(&ref))
		assert.Equal(t, "record:host/ZG5z:www.example.com/default", ref)
	})

	t.Run("error status is returned, not raised", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"Error": "AdmConDataNotFoundError", "code": "Client.Ibap.Data.NotFound", "text": "Reference not found"}`))
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "network/invalid", nil)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		perr := wapi.ParseProtocolError("GET", "network/invalid", resp)
		assert.Equal(t, "Reference not found", perr.Message)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "wapi-test", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL, wapihttp.WithUserAgent("wapi-test"))

		req := &wapihttp.Request{
			Method: "GET",
			Path:   "network",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := wapihttp.NewClient(server.URL,
			wapihttp.WithLogger(logger),
			wapihttp.WithDebug(true),
			wapihttp.WithBasicAuth("admin", "secret"))

		req := &wapihttp.Request{
			Method: "GET",
			Path:   "grid",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, []string{"HTTP Request", "HTTP Response"}, logger.messages("HTTP "))

		fields, ok := logger.logs[0]["fields"].(map[string]interface{})
		require.True(t, ok)

		headers, ok := fields["headers"].(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "***", headers["Authorization"])
	})

	t.Run("without debug nothing is logged", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := wapihttp.NewClient(server.URL, wapihttp.WithLogger(logger))

		_, err := client.Get(context.Background(), "grid", nil)
		require.NoError(t, err)
		assert.Empty(t, logger.logs)
	})
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	ids := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ids <- request.Header.Get(wapi.RequestIDHeader)
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	collector := wapi.NewMetricsCollector()
	chain := wapi.NewInterceptorChain()
	chain.AddRequestInterceptor(wapi.RequestIDInterceptor())
	chain.AddRequestInterceptor(wapi.MetricsRequestInterceptor(collector))
	chain.AddResponseInterceptor(wapi.MetricsResponseInterceptor(collector))

	client := wapihttp.NewClient(server.URL, wapihttp.WithInterceptors(chain))

	_, err := client.Get(context.Background(), "record:host/ZG5z:www.example.com/default", nil)
	require.NoError(t, err)

	assert.Len(t, <-ids, 26)

	metrics := collector.GetMetrics("GET record:host")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(1), metrics.TotalRequests)
}

func TestClient_InterceptorAbortsRequest(t *testing.T) {
	t.Parallel()

	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&hits, 1)
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	chain := wapi.NewInterceptorChain()
	chain.AddRequestInterceptor(func(ctx context.Context, req *wapi.Request) error {
		return assert.AnError
	})

	client := wapihttp.NewClient(server.URL, wapihttp.WithInterceptors(chain))

	_, err := client.Get(context.Background(), "network", nil)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*wapihttp.Client, context.Context) (*wapi.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *wapihttp.Client, ctx context.Context) (*wapi.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *wapihttp.Client, ctx context.Context) (*wapi.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *wapihttp.Client, ctx context.Context) (*wapi.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *wapihttp.Client, ctx context.Context) (*wapi.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := wapihttp.NewClient(server.URL)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL, wapihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL, wapihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL, wapihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("returns the last response once retries run out", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusServiceUnavailable)
			_, _ = writer.Write([]byte("appliance busy"))
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL, wapihttp.WithRetryConfig(2, 10*time.Millisecond, 20*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, "appliance busy", resp.Raw())
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("does not replay a create the server answered", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := wapihttp.NewClient(server.URL, wapihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Post(context.Background(), "record:host", map[string]string{"name": "www"})
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}
