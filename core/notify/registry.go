package notify

import (
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/dmitrymomot/mediator/core/logger"
)

// Registry strongly owns a set of subscriptions and attaches them to the
// hub's dispatchers. Dropping every reference to a registry without
// calling Close lets its subscriptions be garbage collected; Close
// releases them deterministically.
type Registry struct {
	hub    *Hub
	mode   Mode
	exec   ExecutionContext
	logger *slog.Logger

	mu      sync.Mutex
	entries map[reflect.Type]*registryEntry
	order   []reflect.Type
	closed  bool
}

// registryEntry keeps the subscriptions of one message type together
// with a typed release function, so the registry itself can stay untyped.
type registryEntry struct {
	subs    []any
	release func(subs []any)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithExecutionContext sets the execution context captured by every
// subscription of a contextual registry. Ignored by immediate registries.
func WithExecutionContext(ec ExecutionContext) RegistryOption {
	return func(r *Registry) {
		r.exec = ec
	}
}

// NewRegistry creates a registry whose handlers are delivered immediately.
func NewRegistry(hub *Hub, opts ...RegistryOption) *Registry {
	return newRegistry(hub, Immediate, opts)
}

// NewContextRegistry creates a registry whose handlers are delivered
// through an ExecutionContext. The first context registry created with
// an execution context also installs it as the hub default.
func NewContextRegistry(hub *Hub, opts ...RegistryOption) *Registry {
	r := newRegistry(hub, Contextual, opts)
	if r.exec != nil {
		hub.CaptureDefault(r.exec)
	}
	return r
}

func newRegistry(hub *Hub, mode Mode, opts []RegistryOption) *Registry {
	if hub == nil {
		panic("notify: nil hub")
	}
	r := &Registry{
		hub:     hub,
		mode:    mode,
		logger:  hub.logger,
		entries: make(map[reflect.Type]*registryEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	if mode != Contextual {
		r.exec = nil
	}
	return r
}

// Mode returns the registry's delivery mode.
func (r *Registry) Mode() Mode { return r.mode }

// Len returns the number of subscriptions the registry currently owns.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for _, e := range r.entries {
		n += len(e.subs)
	}
	return n
}

// Subscribe registers a synchronous handler for T and returns r for chaining.
// On a closed registry it logs a warning and does nothing.
func Subscribe[T any](r *Registry, fn HandlerFunc[T]) *Registry {
	if _, err := TrySubscribe(r, KindSync, fn); err != nil {
		r.logger.Warn("subscribe ignored", logger.Message(reflect.TypeFor[T]().String()), logger.Error(err))
	}
	return r
}

// SubscribeAsync registers a concurrently delivered handler for T and returns r.
// On a closed registry it logs a warning and does nothing.
func SubscribeAsync[T any](r *Registry, fn HandlerFunc[T]) *Registry {
	if _, err := TrySubscribe(r, KindAsync, fn); err != nil {
		r.logger.Warn("subscribe ignored", logger.Message(reflect.TypeFor[T]().String()), logger.Error(err))
	}
	return r
}

// TrySubscribe registers fn for T and returns the new subscription.
// It fails with ErrRegistryClosed once the registry is closed.
// A nil handler panics.
func TrySubscribe[T any](r *Registry, kind Kind, fn HandlerFunc[T]) (*Subscription[T], error) {
	if fn == nil {
		panic(ErrNilHandler)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}

	key := reflect.TypeFor[T]()
	d := dispatcherFor[T](r.hub, r.mode)

	entry, ok := r.entries[key]
	if !ok {
		entry = &registryEntry{
			release: func(subs []any) {
				for _, s := range subs {
					sub := s.(*Subscription[T])
					sub.close()
					d.Unsubscribe(sub)
				}
			},
		}
		r.entries[key] = entry
		r.order = append(r.order, key)
	}

	sub := newSubscription(kind, fn, r.exec)
	entry.subs = append(entry.subs, sub)
	d.Subscribe(sub)

	r.logger.Debug("subscribed",
		logger.Message(key.String()),
		logger.SubscriptionID(sub.id),
		slog.String("kind", kind.String()),
	)
	return sub, nil
}

// Unsubscribe releases every subscription r holds for T. Unknown types are a no-op.
func Unsubscribe[T any](r *Registry) *Registry {
	key := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseLocked(key)
	return r
}

// Cancel releases a single subscription previously returned by TrySubscribe.
func Cancel[T any](r *Registry, sub *Subscription[T]) {
	if sub == nil {
		return
	}
	key := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return
	}
	idx := slices.IndexFunc(entry.subs, func(s any) bool { return s == any(sub) })
	if idx < 0 {
		return
	}
	entry.release([]any{sub})
	entry.subs = slices.Delete(entry.subs, idx, idx+1)
	if len(entry.subs) == 0 {
		delete(r.entries, key)
		r.order = slices.DeleteFunc(r.order, func(k reflect.Type) bool { return k == key })
	}
}

// UnsubscribeAll releases every subscription r holds. Calling it again is a no-op.
func (r *Registry) UnsubscribeAll() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseAllLocked()
	return r
}

// Close releases every subscription and rejects further subscribes.
// It is idempotent and always returns nil.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.releaseAllLocked()
	r.closed = true
	return nil
}

func (r *Registry) releaseAllLocked() {
	for _, key := range slices.Clone(r.order) {
		r.releaseLocked(key)
	}
}

func (r *Registry) releaseLocked(key reflect.Type) {
	entry, ok := r.entries[key]
	if !ok {
		return
	}
	entry.release(entry.subs)
	delete(r.entries, key)
	r.order = slices.DeleteFunc(r.order, func(k reflect.Type) bool { return k == key })

	r.logger.Debug("unsubscribed", logger.Message(key.String()), logger.Count("subscriptions", len(entry.subs)))
}
