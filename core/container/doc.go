// Package container is a small capability resolver: it maps a key (a Go
// type, usually an interface) to factories that build instances on demand.
//
// The mediator resolves request handlers, notification handlers and
// pipeline behaviors through the Resolver interface; any dependency
// injection framework can be plugged in by implementing it.
//
//	c := container.New()
//	container.ProvideValue(c, clock)
//	container.Provide(c, func(r container.Resolver) (Repo, error) {
//	    return newRepo(container.MustResolve[Clock](r)), nil
//	})
//
//	repo, err := container.Resolve[Repo](c)
//
// Transient registrations build a new instance per resolution; singletons
// are built once, lazily. Multiple registrations for the same key
// accumulate: ResolveRequired returns the last one, ResolveAll returns all
// of them in registration order.
package container
