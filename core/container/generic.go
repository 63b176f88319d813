package container

import (
	"fmt"
	"reflect"
)

// Key returns the capability key for T. Interface types are keyed by the
// interface itself, not by an implementation.
func Key[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Provide registers a transient factory for T.
//
// Example:
//
//	container.Provide(c, func(r container.Resolver) (*OrderService, error) {
//	    repo, err := container.Resolve[OrderRepository](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewOrderService(repo), nil
//	})
func Provide[T any](r Registrar, factory func(Resolver) (T, error)) {
	r.Register(Key[T](), Transient, erase(factory))
}

// ProvideSingleton registers a factory for T that runs once, on first use.
func ProvideSingleton[T any](r Registrar, factory func(Resolver) (T, error)) {
	r.Register(Key[T](), Singleton, erase(factory))
}

// ProvideValue registers an existing value as the singleton instance of T.
func ProvideValue[T any](r Registrar, value T) {
	r.Register(Key[T](), Singleton, func(Resolver) (any, error) {
		return value, nil
	})
}

// Resolve returns the last registered instance of T.
func Resolve[T any](r Resolver) (T, error) {
	var zero T

	instance, err := r.ResolveRequired(Key[T]())
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s resolved to %T", ErrTypeMismatch, Key[T](), instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveAll returns every registered instance of T in registration order.
func ResolveAll[T any](r Resolver) ([]T, error) {
	instances, err := r.ResolveAll(Key[T]())
	if err != nil {
		return nil, err
	}

	typed := make([]T, 0, len(instances))
	for _, instance := range instances {
		v, ok := instance.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %s resolved to %T", ErrTypeMismatch, Key[T](), instance)
		}
		typed = append(typed, v)
	}
	return typed, nil
}

func erase[T any](factory func(Resolver) (T, error)) Factory {
	if factory == nil {
		panic(ErrInvalidFactory)
	}
	return func(r Resolver) (any, error) {
		return factory(r)
	}
}
