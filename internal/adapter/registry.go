package adapter

import (
	"errors"
	"fmt"
	"sort"

	"scantrack/internal/browse"
)

// ErrUnknownAdapter is returned by Resolve for names nothing registered.
var ErrUnknownAdapter = errors.New("unknown adapter")

// Factory builds an adapter bound to one browsing session.
type Factory func(s browse.Session) SiteAdapter

// Registry is a static registration table mapping adapter names to
// factories. The table is built once at startup; there is no dynamic
// discovery.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under its declared name. Duplicate names are
// a configuration bug and fail registration.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return errors.New("adapter name must not be empty")
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("adapter %q registered twice", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register for the compile-time table, where a
// duplicate is a programmer error worth dying for at startup.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Resolve instantiates the named adapter against the given session.
func (r *Registry) Resolve(name string, s browse.Session) (SiteAdapter, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, name)
	}
	return f(s), nil
}

// Names lists the registered adapter names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the registry with every built-in site adapter.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(asuraName, func(s browse.Session) SiteAdapter { return NewAsuraScans(s) })
	r.MustRegister(ravenName, func(s browse.Session) SiteAdapter { return NewRavenScans(s) })
	r.MustRegister(madaraName, func(s browse.Session) SiteAdapter { return NewMadaraScans(s) })
	return r
}
