package fursa

import "sort"

// Registry maps platforms to the adapter that publishes to them.
type Registry struct {
	adapters map[PlatformID]Adapter
}

// NewRegistry builds a registry from adapters. A later adapter for the same
// platform replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[PlatformID]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for a.Platform().
func (r *Registry) Register(a Adapter) {
	if a == nil {
		return
	}
	r.adapters[a.Platform()] = a
}

// Lookup returns the adapter for platform.
func (r *Registry) Lookup(platform PlatformID) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.adapters[platform]
	return a, ok
}

// Platforms returns the registered platforms in sorted order.
func (r *Registry) Platforms() []PlatformID {
	out := make([]PlatformID, 0, len(r.adapters))
	for id := range r.adapters {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
