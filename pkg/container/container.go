// Package container provides a lightweight service container. Services
// bound here can back lazy listeners, built on their first dispatch:
//
//	container.Singleton("mailer", func() interface{} { return listeners.NewMailer() })
//	bus.AddListener("user.created", container.Listener("mailer", "OnUserCreated"), 0)
package container

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

// ErrUnknownBinding is returned by Resolve for a key that was never bound.
var ErrUnknownBinding = errors.New("kashvi/container: unknown binding")

// Factory is a function that produces a service instance.
type Factory func() interface{}

// Container maps keys to service factories.
type Container struct {
	mu         sync.RWMutex
	bindings   map[string]Factory
	singletons map[string]interface{}
}

// New returns an empty container.
func New() *Container {
	return &Container{
		bindings:   map[string]Factory{},
		singletons: map[string]interface{}{},
	}
}

// Bind registers a factory under key. Each call to Make invokes factory anew.
func (c *Container) Bind(key string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[key] = factory
	delete(c.singletons, key)
}

// Singleton registers a factory that is called once; subsequent Make calls
// return the cached instance.
func (c *Container) Singleton(key string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[key] = factory
	// Reserve the slot; resolved lazily on first Make.
	c.singletons[key] = nil
}

// Resolve returns the service registered under key. The factory runs
// without the lock held, so it may resolve its own dependencies. When two
// callers build the same singleton concurrently, the first stored instance
// wins.
func (c *Container) Resolve(key string) (interface{}, error) {
	c.mu.RLock()
	inst, isSingleton := c.singletons[key]
	factory, ok := c.bindings[key]
	c.mu.RUnlock()

	if inst != nil {
		return inst, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBinding, key)
	}

	instance := factory()
	if !isSingleton {
		return instance, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stored, ok := c.singletons[key]; ok && stored != nil {
		return stored, nil
	}
	if _, ok := c.singletons[key]; ok {
		c.singletons[key] = instance
	}
	return instance, nil
}

// Make is Resolve for keys known to be bound. It panics on an unknown key.
func (c *Container) Make(key string) interface{} {
	inst, err := c.Resolve(key)
	if err != nil {
		panic(err.Error())
	}
	return inst
}

// Has reports whether a key has been bound.
func (c *Container) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[key]
	return ok
}

// Listener returns a lazy listener calling method on the service bound to
// id. The service is made on the first dispatch that reaches it, not at
// registration. An empty method uses the service itself as the listener.
func (c *Container) Listener(id, method string) *event.LazyRef {
	return event.Lazy(func() any { return c.Make(id) }, method)
}

// ─────────────────────────────────────────────
// Package-level default container
// ─────────────────────────────────────────────

var std = New()

// Default returns the package-level container.
func Default() *Container { return std }

// Bind registers a factory on the default container.
func Bind(key string, factory Factory) { std.Bind(key, factory) }

// Singleton registers a shared factory on the default container.
func Singleton(key string, factory Factory) { std.Singleton(key, factory) }

// Make resolves key from the default container.
// Panics if the key has not been bound (same behaviour as Laravel's container).
func Make(key string) interface{} { return std.Make(key) }

// Resolve resolves key from the default container.
func Resolve(key string) (interface{}, error) { return std.Resolve(key) }

// Has reports whether key is bound on the default container.
func Has(key string) bool { return std.Has(key) }

// Listener returns a lazy listener backed by the default container.
func Listener(id, method string) *event.LazyRef { return std.Listener(id, method) }
