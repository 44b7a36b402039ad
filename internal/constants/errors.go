package constants

import "errors"

// Configuration errors.
var (
	ErrNoHostConfigured   = errors.New("no grid master configured, use 'wapi config set host <name>' or --host")
	ErrNoUsername         = errors.New("no username configured, use 'wapi config set username <name>' or --username")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrInvalidOutput      = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidBoolean     = errors.New("invalid boolean value")
	ErrPasswordUnreadable = errors.New("no password configured and stdin is not a terminal")
)

// Lookup errors.
var (
	ErrHostNotFound    = errors.New("host record not found")
	ErrNetworkNotFound = errors.New("network not found")
	ErrObjectNotFound  = errors.New("object not found")
	ErrAddressNotFound = errors.New("address not found on host")
)

// Argument errors.
var (
	ErrNoChanges      = errors.New("nothing to update, pass at least one flag")
	ErrInvalidAddress = errors.New("invalid IP address")
	ErrInvalidCIDR    = errors.New("invalid network in CIDR notation")
)
