package objects

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/wapi/pkg/wapi"
)

// Network is a DHCP network.
type Network struct {
	*wapi.Object
}

// AsNetwork wraps obj, which must be a network.
func AsNetwork(obj *wapi.Object) (*Network, error) {
	if obj == nil || obj.Kind().Type != NetworkType {
		return nil, fmt.Errorf("%w: want %s", ErrWrongKind, NetworkType)
	}

	return &Network{Object: obj}, nil
}

// LoadNetwork fetches a network by reference id or search values.
func LoadNetwork(ctx context.Context, m *wapi.Mapper, ref string, values wapi.Values) (*Network, error) {
	obj, err := m.Load(ctx, NetworkKind, ref, values)
	if err != nil {
		return nil, err
	}

	return &Network{Object: obj}, nil
}

// SearchNetworks returns every network matching criteria.
func SearchNetworks(ctx context.Context, m *wapi.Mapper, criteria wapi.Values) ([]*Network, error) {
	found, err := m.Search(ctx, NetworkKind, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]*Network, 0, len(found))
	for _, obj := range found {
		out = append(out, &Network{Object: obj})
	}

	return out, nil
}

// CIDR returns the network address, e.g. "10.0.0.0/24".
func (n *Network) CIDR() string {
	return n.GetString("network")
}

// View returns the network view.
func (n *Network) View() string {
	return n.GetString("network_view")
}

// Comment returns the network comment.
func (n *Network) Comment() string {
	return n.GetString("comment")
}

// Disabled reports whether DHCP serving is disabled for the network.
func (n *Network) Disabled() bool {
	return n.GetBool("disable")
}

// Options returns the DHCP options set on the network.
func (n *Network) Options() []map[string]interface{} {
	var out []map[string]interface{}

	for _, item := range n.GetList("options") {
		if option, ok := item.(map[string]interface{}); ok {
			out = append(out, option)
		}
	}

	return out
}
