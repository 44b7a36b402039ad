package wapi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps type discriminators to kinds.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*Kind
}

// NewRegistry creates a registry holding the given kinds.
func NewRegistry(kinds ...*Kind) *Registry {
	r := &Registry{kinds: make(map[string]*Kind)}
	for _, k := range kinds {
		r.Register(k)
	}

	return r
}

// Register adds k under its type and every alias. A later registration
// for the same discriminator replaces the earlier one.
func (r *Registry) Register(k *Kind) {
	if k == nil || k.Type == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range k.Discriminators() {
		if d != "" {
			r.kinds[d] = k
		}
	}
}

// Lookup returns the kind registered for a discriminator.
func (r *Registry) Lookup(discriminator string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.kinds[discriminator]

	return k, ok
}

// MustLookup is Lookup returning ErrUnknownKind on a miss.
func (r *Registry) MustLookup(discriminator string) (*Kind, error) {
	k, ok := r.Lookup(discriminator)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, discriminator)
	}

	return k, nil
}

// Resolve finds the kind of the object a reference id points to.
//
// The head of the reference (everything before the first "/") is tried
// first, e.g. "record:host" for "record:host/ZG5z:foo.example.com/default".
// Then the segments on either side of the head's first ":" are tried, so
// both "network" and short aliases such as "host_ipv4addr" resolve.
func (r *Registry) Resolve(ref string) (*Kind, bool) {
	head, _, _ := strings.Cut(ref, "/")
	if head == "" {
		return nil, false
	}

	if k, ok := r.Lookup(head); ok {
		return k, true
	}

	before, after, found := strings.Cut(head, ":")
	if !found {
		return nil, false
	}

	if k, ok := r.Lookup(before); ok && before != "" {
		return k, true
	}

	if k, ok := r.Lookup(after); ok && after != "" {
		return k, true
	}

	return nil, false
}

// Discriminators returns every registered discriminator, sorted.
func (r *Registry) Discriminators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.kinds))
	for d := range r.kinds {
		out = append(out, d)
	}

	sort.Strings(out)

	return out
}

// Kinds returns each registered kind once, sorted by type.
func (r *Registry) Kinds() []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Kind]bool, len(r.kinds))
	out := make([]*Kind, 0, len(r.kinds))

	for _, k := range r.kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })

	return out
}
