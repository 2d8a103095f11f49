// Package di provides the service container: a string-keyed registry of
// eager values and lazy, memoized service definitions. The application
// core, its dispatcher, the router and every configured listener are
// resolved through it.
package di

import (
	"fmt"
	"sort"
	"sync"
)

// Definition lazily constructs a service. It receives the container so a
// definition can resolve its own dependencies; the result is memoized per
// container.
type Definition func(*Container) (interface{}, error)

// Well-known container keys consumed by the framework core.
const (
	KeyApplication       = "application"
	KeyApplicationConfig = "application.config"
	KeyDispatcher        = "shared_event_dispatcher"
	KeyRouter            = "router"
	KeyRequest           = "request"
	KeyRenderListener    = "app_render_listener"
	KeyRenderEventParams = "render_event_params"
)

// Container resolves named services. Eager values win over definitions of
// the same name; definitions run at most once.
type Container struct {
	mu          sync.RWMutex
	values      map[string]interface{}
	definitions map[string]Definition
}

// New creates a container from a definition map. Values that are not
// Definitions are stored eagerly.
func New(dependencies map[string]interface{}) *Container {
	c := &Container{
		values:      make(map[string]interface{}),
		definitions: make(map[string]Definition),
	}
	for name, dep := range dependencies {
		switch d := dep.(type) {
		case Definition:
			c.definitions[name] = d
		case func(*Container) (interface{}, error):
			c.definitions[name] = d
		default:
			c.values[name] = dep
		}
	}
	return c
}

// Add registers an eager value, replacing any previous registration.
func (c *Container) Add(name string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
}

// Define registers a lazy definition. It is an error to redefine a name
// that already resolved or was added eagerly.
func (c *Container) Define(name string, def Definition) error {
	if def == nil {
		return fmt.Errorf("di: nil definition for %q", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.values[name]; exists {
		return fmt.Errorf("di: service %q already registered", name)
	}
	c.definitions[name] = def
	return nil
}

// Has reports whether the name resolves to a value or a definition.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.values[name]; ok {
		return true
	}
	_, ok := c.definitions[name]
	return ok
}

// Get resolves a service by name, running and memoizing its definition on
// first access.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	if v, ok := c.values[name]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	def, ok := c.definitions[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("di: service %q not found", name)
	}

	// The definition runs outside the lock so it can resolve its own
	// dependencies through the container.
	value, err := def(c)
	if err != nil {
		return nil, fmt.Errorf("di: build %q: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.values[name]; ok {
		return existing, nil
	}
	c.values[name] = value
	return value, nil
}

// MustGet resolves a service or panics. Intended for wiring paths where a
// missing service is a programming error.
func (c *Container) MustGet(name string) interface{} {
	v, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Names returns every registered service name, sorted.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool, len(c.values)+len(c.definitions))
	for name := range c.values {
		seen[name] = true
	}
	for name := range c.definitions {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
