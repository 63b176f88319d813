package container

import (
	"fmt"
	"reflect"
	"sync"
)

// Resolver supplies instances by capability key.
type Resolver interface {
	// ResolveRequired returns the most recently registered instance for key.
	// It fails with ErrNotRegistered when nothing is registered.
	ResolveRequired(key reflect.Type) (any, error)

	// ResolveAll returns one instance per registration for key, in registration order.
	// An unknown key yields an empty slice and no error.
	ResolveAll(key reflect.Type) ([]any, error)
}

// Registrar accepts capability registrations.
type Registrar interface {
	Register(key reflect.Type, lifetime Lifetime, factory Factory)
}

// Factory builds an instance. It may resolve its own dependencies from r.
type Factory func(r Resolver) (any, error)

// Lifetime controls how often a factory runs.
type Lifetime int

const (
	// Transient runs the factory on every resolution.
	Transient Lifetime = iota
	// Singleton runs the factory once, on first resolution.
	Singleton
)

// String returns a human-readable lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

type provider struct {
	lifetime Lifetime
	factory  Factory

	once     sync.Once
	instance any
	err      error
}

func (p *provider) get(r Resolver) (any, error) {
	if p.lifetime == Transient {
		return p.factory(r)
	}
	p.once.Do(func() {
		p.instance, p.err = p.factory(r)
	})
	return p.instance, p.err
}

// Container is a minimal in-process capability resolver.
// It is safe for concurrent use.
type Container struct {
	mu        sync.RWMutex
	providers map[reflect.Type][]*provider
}

// New creates an empty container.
func New() *Container {
	return &Container{
		providers: make(map[reflect.Type][]*provider),
	}
}

// Register adds a factory for key. Registrations accumulate; ResolveRequired
// returns the last one and ResolveAll returns all of them.
func (c *Container) Register(key reflect.Type, lifetime Lifetime, factory Factory) {
	if key == nil || factory == nil {
		panic(ErrInvalidFactory)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.providers[key] = append(c.providers[key], &provider{
		lifetime: lifetime,
		factory:  factory,
	})
}

// ResolveRequired implements Resolver.
func (c *Container) ResolveRequired(key reflect.Type) (any, error) {
	c.mu.RLock()
	providers := c.providers[key]
	c.mu.RUnlock()

	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, typeName(key))
	}

	instance, err := providers[len(providers)-1].get(c)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", typeName(key), err)
	}
	return instance, nil
}

// ResolveAll implements Resolver.
func (c *Container) ResolveAll(key reflect.Type) ([]any, error) {
	c.mu.RLock()
	providers := c.providers[key]
	c.mu.RUnlock()

	instances := make([]any, 0, len(providers))
	for _, p := range providers {
		instance, err := p.get(c)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", typeName(key), err)
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// Has reports whether at least one registration exists for key.
func (c *Container) Has(key reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.providers[key]) > 0
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
