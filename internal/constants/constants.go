package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// WAPI defaults.
const (
	// DefaultWAPIVersion is the WAPI version used when none is configured.
	DefaultWAPIVersion = "2.7"

	// WAPIPathPrefix precedes the version in every WAPI URL.
	WAPIPathPrefix = "/wapi/v"

	// DefaultNetworkView is the network view NIOS creates out of the box.
	DefaultNetworkView = "default"

	// DefaultDNSView is the DNS view NIOS creates out of the box.
	DefaultDNSView = "default"

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "wapi-go"
)

// Change notifications.
const (
	// DefaultSubjectPrefix prefixes NATS subjects for change events.
	DefaultSubjectPrefix = "wapi.changes"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Validation and limits.
const (
	// MinimumArgumentCount is the minimum number of command line arguments.
	MinimumArgumentCount = 2
)
