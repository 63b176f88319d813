package notify

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/mediator/core/logger"
)

// Hub owns one Dispatcher per notification type and delivery mode.
// Registries attach subscriptions to a hub; publishers call CallHandlers.
type Hub struct {
	logger *slog.Logger

	mu         sync.Mutex
	plain      map[reflect.Type]*hubEntry
	contextual map[reflect.Type]*hubEntry

	defaultExec atomic.Pointer[execHolder]
}

type hubEntry struct {
	dispatcher any
	count      func() int
}

type execHolder struct {
	ec ExecutionContext
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger used by the hub's dispatchers.
func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithDefaultExecutionContext sets the execution context used by contextual
// dispatchers for subscriptions that did not capture their own.
func WithDefaultExecutionContext(ec ExecutionContext) HubOption {
	return func(h *Hub) {
		if ec != nil {
			h.defaultExec.Store(&execHolder{ec: ec})
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:     slog.New(slog.DiscardHandler),
		plain:      make(map[reflect.Type]*hubEntry),
		contextual: make(map[reflect.Type]*hubEntry),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("notify"))
	return h
}

// CaptureDefault sets the default execution context if none is set yet.
// It reports whether ec was installed.
func (h *Hub) CaptureDefault(ec ExecutionContext) bool {
	if ec == nil {
		return false
	}
	return h.defaultExec.CompareAndSwap(nil, &execHolder{ec: ec})
}

// DefaultExecutionContext returns the default execution context, or nil.
func (h *Hub) DefaultExecutionContext() ExecutionContext {
	if holder := h.defaultExec.Load(); holder != nil {
		return holder.ec
	}
	return nil
}

// RegisteredDelegateCount returns the number of live subscriptions across
// every dispatcher owned by the hub.
func (h *Hub) RegisteredDelegateCount() int {
	h.mu.Lock()
	counters := make([]func() int, 0, len(h.plain)+len(h.contextual))
	for _, e := range h.plain {
		counters = append(counters, e.count)
	}
	for _, e := range h.contextual {
		counters = append(counters, e.count)
	}
	h.mu.Unlock()

	var total int
	for _, count := range counters {
		total += count()
	}
	return total
}

// DispatcherFor returns the immediate-mode dispatcher for T, creating it on first use.
func DispatcherFor[T any](h *Hub) *Dispatcher[T] {
	return dispatcherFor[T](h, Immediate)
}

// ContextDispatcherFor returns the contextual dispatcher for T, creating it on first use.
func ContextDispatcherFor[T any](h *Hub) *Dispatcher[T] {
	return dispatcherFor[T](h, Contextual)
}

// CallHandlers delivers msg through both the immediate and the contextual
// dispatcher for T. Types nobody subscribed to are a no-op.
func CallHandlers[T any](ctx context.Context, h *Hub, msg T) error {
	var errs []error
	if d := lookup[T](h, Immediate); d != nil {
		if err := d.CallHandlers(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	if d := lookup[T](h, Contextual); d != nil {
		if err := d.CallHandlers(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) table(mode Mode) map[reflect.Type]*hubEntry {
	if mode == Contextual {
		return h.contextual
	}
	return h.plain
}

func dispatcherFor[T any](h *Hub, mode Mode) *Dispatcher[T] {
	key := reflect.TypeFor[T]()

	h.mu.Lock()
	defer h.mu.Unlock()

	table := h.table(mode)
	if e, ok := table[key]; ok {
		return e.dispatcher.(*Dispatcher[T])
	}

	d := newDispatcher[T](mode, h.DefaultExecutionContext, h.logger)
	table[key] = &hubEntry{dispatcher: d, count: d.RegisteredDelegateCount}
	return d
}

func lookup[T any](h *Hub, mode Mode) *Dispatcher[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.table(mode)[reflect.TypeFor[T]()]; ok {
		return e.dispatcher.(*Dispatcher[T])
	}
	return nil
}
