package csr

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

// Factory builds the instance registered under a key. It receives the
// registry to resolve its own dependencies.
type Factory func(*Registry) (any, error)

// Connector is the connection provider of generated mappers.
// *sql.Driver of the dialect/sql package implements it.
type Connector interface {
	Dialect() string
	Conn(ctx context.Context) (*sql.Conn, func() error, error)
}

// Mounter registers the routes of one generated controller.
type Mounter func(r *Registry, router gin.IRouter)

// Registry maps type names onto factories and caches the instances they
// build. It is populated once at startup by the generated Register
// functions and is read-only afterwards, except for the instance cache.
//
// Instances are built lazily on first resolution and live as long as the
// registry. Concurrent first resolutions of a key build one instance.
// Factories must not resolve their own key, directly or through a
// dependency cycle.
type Registry struct {
	mu          sync.RWMutex
	factories   map[string]Factory
	aliases     map[string]string
	instances   map[string]any
	group       singleflight.Group
	connector   Connector
	controllers []controller
}

type controller struct {
	name  string
	mount Mounter
}

// Option configures a Registry.
type Option func(*Registry)

// WithConnector sets the connection provider of generated mappers.
func WithConnector(c Connector) Option {
	return func(r *Registry) {
		r.connector = c
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
		instances: make(map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provide registers the factory of key. A later registration of the same
// key replaces the former one.
func (r *Registry) Provide(key string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = f
	delete(r.instances, key)
}

// Set registers a ready-made instance under key.
func (r *Registry) Set(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[key] = v
}

// Alias makes alias resolve to the same instance as key.
func (r *Registry) Alias(alias, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = key
}

// Has reports whether key (or an alias of it) can be resolved.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key = r.canonical(key)
	_, f := r.factories[key]
	_, i := r.instances[key]
	return f || i
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.factories)+len(r.instances)+len(r.aliases))
	for k := range r.factories {
		seen[k] = struct{}{}
	}
	for k := range r.instances {
		seen[k] = struct{}{}
	}
	for k := range r.aliases {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonical follows aliases. The caller holds mu.
func (r *Registry) canonical(key string) string {
	for i := 0; i < len(r.aliases); i++ {
		next, ok := r.aliases[key]
		if !ok {
			break
		}
		key = next
	}
	return key
}

// Get returns the instance of key, building it on first use.
func (r *Registry) Get(key string) (any, error) {
	r.mu.RLock()
	key = r.canonical(key)
	v, ok := r.instances[key]
	f := r.factories[key]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}
	if f == nil {
		return nil, &ResolveError{Key: key}
	}
	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.RLock()
		v, ok := r.instances[key]
		r.mu.RUnlock()
		if ok {
			return v, nil
		}
		v, err := f(r)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.instances[key] = v
		r.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, &ResolveError{Key: key, Cause: err}
	}
	return v, nil
}

// Resolve returns the instance of key as a T.
func Resolve[T any](r *Registry, key string) (T, error) {
	var zero T
	v, err := r.Get(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &ResolveError{Key: key, Cause: fmt.Errorf("instance of type %T is not a %v", v, reflect.TypeFor[T]())}
	}
	return t, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](r *Registry, key string) T {
	t, err := Resolve[T](r, key)
	if err != nil {
		panic(err)
	}
	return t
}

// SetConnector sets the connection provider of generated mappers.
func (r *Registry) SetConnector(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connector = c
}

// Dialect returns the dialect of the connection provider, or "" when unset.
func (r *Registry) Dialect() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.connector == nil {
		return ""
	}
	return r.connector.Dialect()
}

// Conn acquires a connection from the connection provider. The release
// function must be called once the connection is no longer used.
func (r *Registry) Conn(ctx context.Context) (*sql.Conn, func() error, error) {
	r.mu.RLock()
	c := r.connector
	r.mu.RUnlock()
	if c == nil {
		return nil, nil, ErrNoConnector
	}
	return c.Conn(ctx)
}

// AddController registers the route mounter of a generated controller.
func (r *Registry) AddController(name string, m Mounter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.controllers {
		if c.name == name {
			r.controllers[i].mount = m
			return
		}
	}
	r.controllers = append(r.controllers, controller{name: name, mount: m})
}

// Controllers returns the names of the registered controllers in
// registration order.
func (r *Registry) Controllers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.controllers))
	for i, c := range r.controllers {
		names[i] = c.name
	}
	return names
}

// Mount mounts the routes of every registered controller on router.
func (r *Registry) Mount(router gin.IRouter) {
	r.mu.RLock()
	controllers := make([]controller, len(r.controllers))
	copy(controllers, r.controllers)
	r.mu.RUnlock()
	for _, c := range controllers {
		c.mount(r, router)
	}
}

// Close closes the connection provider if it implements io.Closer.
func (r *Registry) Close() error {
	r.mu.Lock()
	c := r.connector
	r.connector = nil
	r.mu.Unlock()
	if cl, ok := c.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
