package objects

import "github.com/fivetwenty-io/wapi/pkg/wapi"

// WAPI object types.
const (
	HostType        = "record:host"
	HostIPv4Type    = "record:host_ipv4addr"
	HostIPv6Type    = "record:host_ipv6addr"
	IPv4AddressType = "ipv4address"
	NetworkType     = "network"
)

func list() []interface{} {
	return []interface{}{}
}

// HostKind is the host record. Address sub-records come back embedded in
// ipv4addrs and ipv6addrs.
var HostKind = &wapi.Kind{
	Type:    HostType,
	Aliases: []string{"host"},
	Fields: []wapi.Field{
		{Name: "aliases", Default: list()},
		{Name: "comment"},
		{Name: "configure_for_dns", Default: true},
		{Name: "disable", Default: false},
		{Name: "dns_aliases", Default: list()},
		{Name: "dns_name"},
		{Name: "extattrs"},
		{Name: "ipv4addrs", Default: list()},
		{Name: "ipv6addrs", Default: list()},
		{Name: "name"},
		{Name: "rrset_order", Default: "cyclic"},
		{Name: "ttl"},
		{Name: "use_ttl", Default: false},
		{Name: "view", Default: "default"},
		{Name: "zone"},
	},
	SearchBy:     []string{"name", "ipv4addr", "ipv6addr", "mac"},
	ReturnIgnore: []string{"view"},
	SaveIgnore:   []string{"dns_name", "host", "zone"},
	Supports:     []wapi.Operation{wapi.OpFetch, wapi.OpSave, wapi.OpDelete},
	ReprKeys:     []string{"name", "ipv4addrs", "ipv6addrs"},
}

// HostIPv4Kind is an IPv4 address of a host record.
var HostIPv4Kind = &wapi.Kind{
	Type:    HostIPv4Type,
	Aliases: []string{"host_ipv4addr"},
	Fields: []wapi.Field{
		{Name: "bootfile"},
		{Name: "bootserver"},
		{Name: "configure_for_dhcp"},
		{Name: "deny_bootp"},
		{Name: "discovered_data"},
		{Name: "enable_pxe_lease_time"},
		{Name: "host"},
		{Name: "ignore_client_requested_options"},
		{Name: "ipv4addr"},
		{Name: "last_queried"},
		{Name: "mac"},
		{Name: "match_client"},
		{Name: "network"},
		{Name: "nextserver"},
		{Name: "options"},
		{Name: "pxe_lease_time"},
		{Name: "use_bootfile"},
		{Name: "use_bootserver"},
		{Name: "use_deny_bootp"},
		{Name: "use_for_ea_inheritance"},
		{Name: "use_ignore_client_requested_options"},
		{Name: "use_nextserver"},
		{Name: "use_options"},
		{Name: "use_pxe_lease_time"},
	},
	SearchBy: []string{"ipv4addr"},
	Supports: []wapi.Operation{wapi.OpFetch},
	ReprKeys: []string{"ipv4addr"},
	SaveAs: func(obj *wapi.Object) map[string]interface{} {
		return map[string]interface{}{"ipv4addr": obj.GetString("ipv4addr")}
	},
}

// HostIPv6Kind is an IPv6 address of a host record.
var HostIPv6Kind = &wapi.Kind{
	Type:    HostIPv6Type,
	Aliases: []string{"host_ipv6addr"},
	Fields: []wapi.Field{
		{Name: "address_type"},
		{Name: "configure_for_dhcp", Default: true},
		{Name: "discovered_data"},
		{Name: "domain_name"},
		{Name: "domain_name_servers", Default: list()},
		{Name: "duid"},
		{Name: "host"},
		{Name: "ipv6addr"},
		{Name: "ipv6bits"},
		{Name: "ipv6prefix_bits"},
		{Name: "match_client"},
		{Name: "options"},
		{Name: "preferred_lifetime", Default: float64(27000)},
		{Name: "use_domain_name", Default: false},
		{Name: "use_domain_name_servers", Default: false},
		{Name: "use_for_ea_inheritance", Default: false},
		{Name: "use_options", Default: false},
		{Name: "use_valid_lifetime", Default: false},
		{Name: "valid_lifetime", Default: float64(43200)},
	},
	SearchBy:   []string{"ipv6addr"},
	SaveIgnore: []string{"host"},
	Supports:   []wapi.Operation{wapi.OpFetch},
	ReprKeys:   []string{"ipv6addr", "ipv6bits", "ipv6prefix_bits"},
	SaveAs: func(obj *wapi.Object) map[string]interface{} {
		out := map[string]interface{}{"ipv6addr": obj.GetString("ipv6addr")}

		for _, name := range []string{"ipv6bits", "ipv6prefix_bits"} {
			if v, _ := obj.Get(name); v != nil {
				out[name] = v
			}
		}

		return out
	},
}

// IPv4AddressKind is the IPAM view of a single IPv4 address.
var IPv4AddressKind = &wapi.Kind{
	Type: IPv4AddressType,
	Fields: []wapi.Field{
		{Name: "dhcp_client_identifier"},
		{Name: "extattrs"},
		{Name: "fingerprint"},
		{Name: "ip_address"},
		{Name: "is_conflict"},
		{Name: "lease_state"},
		{Name: "mac_address"},
		{Name: "names"},
		{Name: "network"},
		{Name: "network_view"},
		{Name: "objects"},
		{Name: "status"},
		{Name: "types"},
		{Name: "usage"},
		{Name: "username"},
	},
	SearchBy: []string{"ip_address"},
	Supports: []wapi.Operation{wapi.OpFetch},
	ReprKeys: []string{"ip_address"},
}

// NetworkKind is a DHCP network.
var NetworkKind = &wapi.Kind{
	Type: NetworkType,
	Fields: []wapi.Field{
		{Name: "authority"},
		{Name: "auto_create_reversezone"},
		{Name: "bootfile"},
		{Name: "bootserver"},
		{Name: "comment"},
		{Name: "ddns_domainname"},
		{Name: "ddns_generate_hostname"},
		{Name: "ddns_server_always_updates"},
		{Name: "ddns_ttl"},
		{Name: "ddns_update_fixed_addresses"},
		{Name: "ddns_use_option81"},
		{Name: "deny_bootp"},
		{Name: "disable"},
		{Name: "email_list"},
		{Name: "enable_ddns"},
		{Name: "enable_dhcp_thresholds"},
		{Name: "enable_email_warnings"},
		{Name: "enable_ifmap_publishing"},
		{Name: "enable_snmp_warnings"},
		{Name: "extattrs"},
		{Name: "high_water_mark"},
		{Name: "high_water_mark_reset"},
		{Name: "ignore_dhcp_option_list_request"},
		{Name: "ipv4addr"},
		{Name: "lease_scavenge_time"},
		{Name: "low_water_mark"},
		{Name: "low_water_mark_reset"},
		{Name: "members"},
		{Name: "netmask"},
		{Name: "network"},
		{Name: "network_container"},
		{Name: "network_view"},
		{Name: "nextserver"},
		{Name: "options"},
		{Name: "pxe_lease_time"},
		{Name: "recycle_leases"},
		{Name: "template"},
		{Name: "update_dns_on_lease_renewal"},
		{Name: "use_authority"},
		{Name: "use_bootfile"},
		{Name: "use_bootserver"},
		{Name: "use_ddns_domainname"},
		{Name: "use_ddns_generate_hostname"},
		{Name: "use_ddns_ttl"},
		{Name: "use_ddns_update_fixed_addresses"},
		{Name: "use_ddns_use_option81"},
		{Name: "use_deny_bootp"},
		{Name: "use_email_list"},
		{Name: "use_enable_ddns"},
		{Name: "use_enable_dhcp_thresholds"},
		{Name: "use_enable_ifmap_publishing"},
		{Name: "use_ignore_dhcp_option_list_request"},
		{Name: "use_lease_scavenge_time"},
		{Name: "use_nextserver"},
		{Name: "use_options"},
		{Name: "use_recycle_leases"},
		{Name: "use_update_dns_on_lease_renewal"},
		{Name: "use_zone_associations"},
		{Name: "zone_associations"},
	},
	SearchBy:     []string{"comment", "ipv4addr", "network", "network_container", "network_view"},
	ReturnIgnore: []string{"view", "auto_create_reversezone", "template", "name"},
	Supports:     []wapi.Operation{wapi.OpFetch, wapi.OpSave, wapi.OpDelete},
	ReprKeys:     []string{"network", "network_view"},
}

// Kinds returns the built-in kinds.
func Kinds() []*wapi.Kind {
	return []*wapi.Kind{HostKind, HostIPv4Kind, HostIPv6Kind, IPv4AddressKind, NetworkKind}
}

// DefaultRegistry returns a registry holding the built-in kinds.
func DefaultRegistry() *wapi.Registry {
	return wapi.NewRegistry(Kinds()...)
}
