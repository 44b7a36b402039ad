// Package wapi maps Infoblox NIOS WAPI objects to local objects and keeps
// them in sync with the server.
//
// # Overview
//
// Every WAPI object type is described by a Kind: its ordered fields and
// their defaults, which keys can be searched on, which fields are never
// returned or saved, and which of fetch, save and delete it allows. The
// concrete kinds (hosts, host addresses, networks, ...) live in the
// objects package; this package holds the generic engine.
//
// A Mapper binds a Transport (see the session package for the HTTP one), a
// Registry of kinds and a Logger. Objects are built through it:
//
//	m, err := wapi.NewMapper(transport, wapi.WithRegistry(objects.DefaultRegistry()))
//	if err != nil { /* handle */ }
//
//	host, err := m.Load(ctx, objects.HostKind, "", wapi.Values{"name": "www.example.com"})
//	if err != nil { /* handle */ }
//
//	_ = host.Set("comment", "web frontend")
//	_, err = host.Save(ctx)
//
// New builds an object without touching the network; Load also fetches it
// when a reference id or search criteria are given.
//
// # Nested objects
//
// WAPI embeds related objects in responses, e.g. a host's ipv4addrs. Any
// embedded mapping carrying a _ref is turned into an Object of the kind the
// registry resolves from the reference's type prefix. These nested objects
// are built from the response alone; decoding never issues extra requests.
// When saving, nested objects are written back in their kind's compact
// SaveAs form or as their reference id.
//
// # Errors
//
// Failed calls return *ProtocolError carrying the server's "text" message.
// Operations a kind does not declare fail with *CapabilityError before any
// request is made; deleting an object with no reference id fails with
// *StateError. Use IsProtocolError, IsNotFound, IsCapabilityError and
// IsStateError to branch on them.
//
// # Interceptors
//
// InterceptorChain and the interceptors in this package (logging, headers,
// request ids, metrics) are run by the HTTP transport around each call.
package wapi
