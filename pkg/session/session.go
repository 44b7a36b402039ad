// Package session connects the object mapper to a NIOS grid master over
// WAPI.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/wapi/internal/constants"
	wapihttp "github.com/fivetwenty-io/wapi/internal/http"
	"github.com/fivetwenty-io/wapi/pkg/objects"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrHostRequired    = errors.New("grid master host is required")
	ErrInvalidHost     = errors.New("invalid grid master host")
	ErrSchemaRequest   = errors.New("schema request failed")
	ErrInvalidVersion  = errors.New("invalid WAPI version")
	ErrInvalidTimeouts = errors.New("retry wait min exceeds retry wait max")
)

// Config holds the settings for a WAPI session.
type Config struct {
	// Host is the grid master, either a bare host name ("gm.example.com")
	// or a URL. Bare names are reached over https.
	Host string
	// Username and Password are sent as HTTP basic auth.
	Username string
	Password string
	// WAPIVersion selects the API version, e.g. "2.7". Defaults to
	// constants.DefaultWAPIVersion.
	WAPIVersion string

	// SkipTLSVerify disables certificate verification.
	SkipTLSVerify bool
	// HTTPTimeout bounds each attempt.
	HTTPTimeout time.Duration
	// RetryMax is the number of retries for 429, 5xx and connection
	// errors. Zero selects the default.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Debug logs every request and response through Logger.
	Debug bool
	// Logger receives transport and mapper logs.
	Logger    wapi.Logger
	UserAgent string

	// Observer is told about every successful save and delete.
	Observer wapi.Observer
	// Metrics, when set, records per-endpoint call statistics.
	Metrics *wapi.MetricsCollector
	// RequestInterceptors and ResponseInterceptors run after the built-in
	// request id and logging interceptors.
	RequestInterceptors  []wapi.RequestInterceptor
	ResponseInterceptors []wapi.ResponseInterceptor
	// CatalogFile names a YAML, JSON or TOML file of extra kinds to
	// register next to the built-in ones.
	CatalogFile string
}

// Session is a WAPI transport bound to one grid master.
type Session struct {
	client   *wapihttp.Client
	registry *wapi.Registry
	mapper   *wapi.Mapper
	baseURL  string
}

// New creates a session. No request is made until the first call.
func New(config *Config) (*Session, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	baseURL, err := BaseURL(config.Host, config.WAPIVersion)
	if err != nil {
		return nil, err
	}

	if config.RetryWaitMin > 0 && config.RetryWaitMax > 0 && config.RetryWaitMin > config.RetryWaitMax {
		return nil, ErrInvalidTimeouts
	}

	registry := objects.DefaultRegistry()

	if config.CatalogFile != "" {
		kinds, err := objects.LoadKinds(config.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}

		for _, kind := range kinds {
			registry.Register(kind)
		}
	}

	s := &Session{
		client:   wapihttp.NewClient(baseURL, clientOptions(config)...),
		registry: registry,
		baseURL:  baseURL,
	}

	opts := []wapi.Option{wapi.WithRegistry(registry), wapi.WithLogger(config.Logger)}
	if config.Observer != nil {
		opts = append(opts, wapi.WithObserver(config.Observer))
	}

	s.mapper, err = wapi.NewMapper(s, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating mapper: %w", err)
	}

	return s, nil
}

func clientOptions(config *Config) []wapihttp.Option {
	opts := []wapihttp.Option{
		wapihttp.WithBasicAuth(config.Username, config.Password),
		wapihttp.WithSkipTLSVerify(config.SkipTLSVerify),
		wapihttp.WithDebug(config.Debug),
		wapihttp.WithInterceptors(interceptors(config)),
	}

	if config.Logger != nil {
		opts = append(opts, wapihttp.WithLogger(config.Logger))
	}

	if config.UserAgent != "" {
		opts = append(opts, wapihttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, wapihttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, wapihttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	return opts
}

func interceptors(config *Config) *wapi.InterceptorChain {
	chain := wapi.NewInterceptorChain()
	chain.AddRequestInterceptor(wapi.RequestIDInterceptor())

	if config.Logger != nil {
		chain.AddRequestInterceptor(wapi.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(wapi.LoggingResponseInterceptor(config.Logger))
	}

	if config.Metrics != nil {
		chain.AddRequestInterceptor(wapi.MetricsRequestInterceptor(config.Metrics))
		chain.AddResponseInterceptor(wapi.MetricsResponseInterceptor(config.Metrics))
	}

	for _, interceptor := range config.RequestInterceptors {
		chain.AddRequestInterceptor(interceptor)
	}

	for _, interceptor := range config.ResponseInterceptors {
		chain.AddResponseInterceptor(interceptor)
	}

	return chain
}

// BaseURL builds "https://<host>/wapi/v<version>/" from a host name or URL.
func BaseURL(host, version string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", ErrHostRequired
	}

	if version == "" {
		version = constants.DefaultWAPIVersion
	}

	version = strings.TrimPrefix(version, "v")
	if strings.ContainsAny(version, "/?# ") {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	parsed, err := url.Parse(host)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}

	return fmt.Sprintf("%s://%s%s%s/", parsed.Scheme, parsed.Host, constants.WAPIPathPrefix, version), nil
}

// BaseURL returns the WAPI root this session talks to.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// Registry returns the kinds known to the session.
func (s *Session) Registry() *wapi.Registry {
	return s.registry
}

// Mapper returns the object mapper bound to this session.
func (s *Session) Mapper() *wapi.Mapper {
	return s.mapper
}

// Get implements wapi.Transport. query and extra are sent together;
// extra wins on a key collision.
func (s *Session) Get(ctx context.Context, path string, query, extra url.Values) (*wapi.Response, error) {
	merged := url.Values{}

	for key, values := range query {
		merged[key] = append([]string(nil), values...)
	}

	for key, values := range extra {
		merged[key] = append([]string(nil), values...)
	}

	return s.client.Get(ctx, path, merged)
}

// Post implements wapi.Transport.
func (s *Session) Post(ctx context.Context, path string, body interface{}) (*wapi.Response, error) {
	return s.client.Post(ctx, path, body)
}

// Put implements wapi.Transport.
func (s *Session) Put(ctx context.Context, path string, body interface{}) (*wapi.Response, error) {
	return s.client.Put(ctx, path, body)
}

// Delete implements wapi.Transport.
func (s *Session) Delete(ctx context.Context, path string) (*wapi.Response, error) {
	return s.client.Delete(ctx, path)
}

// Schema describes what the grid master supports.
type Schema struct {
	RequestedVersion  string   `json:"requested_version"  yaml:"requested_version"`
	SupportedVersions []string `json:"supported_versions" yaml:"supported_versions"`
	SupportedObjects  []string `json:"supported_objects"  yaml:"supported_objects"`
}

// Schema fetches the WAPI schema, which also verifies the credentials.
func (s *Session) Schema(ctx context.Context) (*Schema, error) {
	resp, err := s.client.Get(ctx, "", url.Values{"_schema": []string{""}})
	if err != nil {
		return nil, fmt.Errorf("fetching schema: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", ErrSchemaRequest, wapi.ParseProtocolError(http.MethodGet, "?_schema", resp))
	}

	var schema Schema

	err = resp.Decode(&schema)
	if err != nil {
		return nil, fmt.Errorf("fetching schema: %w", err)
	}

	return &schema, nil
}
