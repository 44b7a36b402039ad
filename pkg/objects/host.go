package objects

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/wapi/pkg/wapi"
)

// Static errors for err113 compliance.
var (
	ErrAddressExists = errors.New("address already exists")
	ErrWrongKind     = errors.New("object is of a different kind")
)

// Host is a host record with helpers for its address lists.
type Host struct {
	*wapi.Object
}

// AsHost wraps obj, which must be a host record.
func AsHost(obj *wapi.Object) (*Host, error) {
	if obj == nil || obj.Kind().Type != HostType {
		return nil, fmt.Errorf("%w: want %s", ErrWrongKind, HostType)
	}

	return &Host{Object: obj}, nil
}

// NewHost builds an unsaved host record named name.
func NewHost(m *wapi.Mapper, name string) (*Host, error) {
	obj, err := m.New(HostKind, "", wapi.Values{"name": name})
	if err != nil {
		return nil, err
	}

	return &Host{Object: obj}, nil
}

// LoadHost fetches a host record by reference id or by search values
// (name, ipv4addr, ipv6addr or mac). The host is unidentified when nothing
// matched.
func LoadHost(ctx context.Context, m *wapi.Mapper, ref string, values wapi.Values) (*Host, error) {
	obj, err := m.Load(ctx, HostKind, ref, values)
	if err != nil {
		return nil, err
	}

	return &Host{Object: obj}, nil
}

// Name returns the host's FQDN.
func (h *Host) Name() string {
	return h.GetString("name")
}

// IPv4Addrs returns the host's IPv4 addresses.
func (h *Host) IPv4Addrs() []string {
	return addresses(h.GetList("ipv4addrs"), "ipv4addr")
}

// IPv6Addrs returns the host's IPv6 addresses.
func (h *Host) IPv6Addrs() []string {
	return addresses(h.GetList("ipv6addrs"), "ipv6addr")
}

// AddIPv4Addr adds an address to the host. Call Save to persist it.
func (h *Host) AddIPv4Addr(addr string) error {
	return h.addAddress("ipv4addrs", "ipv4addr", addr)
}

// RemoveIPv4Addr removes an address from the host and reports whether it
// was present. Call Save to persist it.
func (h *Host) RemoveIPv4Addr(addr string) bool {
	return h.removeAddress("ipv4addrs", "ipv4addr", addr)
}

// AddIPv6Addr adds an address to the host. Call Save to persist it.
func (h *Host) AddIPv6Addr(addr string) error {
	return h.addAddress("ipv6addrs", "ipv6addr", addr)
}

// RemoveIPv6Addr removes an address from the host and reports whether it
// was present. Call Save to persist it.
func (h *Host) RemoveIPv6Addr(addr string) bool {
	return h.removeAddress("ipv6addrs", "ipv6addr", addr)
}

func (h *Host) addAddress(field, key, addr string) error {
	current := h.GetList(field)

	for _, item := range current {
		if addressOf(item, key) == addr {
			return fmt.Errorf("%w: %s on %s", ErrAddressExists, addr, h.Name())
		}
	}

	updated := make([]interface{}, 0, len(current)+1)
	updated = append(updated, current...)
	updated = append(updated, map[string]interface{}{key: addr})

	return h.Set(field, updated)
}

func (h *Host) removeAddress(field, key, addr string) bool {
	current := h.GetList(field)

	for i, item := range current {
		if addressOf(item, key) != addr {
			continue
		}

		updated := make([]interface{}, 0, len(current)-1)
		updated = append(updated, current[:i]...)
		updated = append(updated, current[i+1:]...)
		_ = h.Set(field, updated)

		return true
	}

	return false
}

func addresses(items []interface{}, key string) []string {
	out := make([]string, 0, len(items))

	for _, item := range items {
		if addr := addressOf(item, key); addr != "" {
			out = append(out, addr)
		}
	}

	return out
}

// addressOf reads key from a plain mapping or a nested address object.
func addressOf(item interface{}, key string) string {
	switch v := item.(type) {
	case map[string]interface{}:
		s, _ := v[key].(string)

		return s
	case *wapi.Object:
		return v.GetString(key)
	default:
		return ""
	}
}
