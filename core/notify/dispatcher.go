package notify

import (
	"context"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"weak"

	"github.com/dmitrymomot/mediator/core/logger"
	"github.com/dmitrymomot/mediator/pkg/async"
)

// Mode selects where a dispatcher runs handlers.
type Mode int

const (
	// Immediate runs handlers on the publishing goroutine (sync)
	// or on fresh goroutines (async).
	Immediate Mode = iota
	// Contextual routes every delivery through an ExecutionContext:
	// the one captured by the subscription, else the hub default.
	// Deliveries with neither are skipped.
	Contextual
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Immediate:
		return "immediate"
	case Contextual:
		return "contextual"
	default:
		return "unknown"
	}
}

// Dispatcher holds non-owning references to the subscriptions for one
// notification type and delivers notifications to them.
//
// The subscriber lists are copy-on-write: every mutation replaces the
// slice, so a delivery pass works on a stable snapshot and handlers are
// never invoked while the lock is held.
type Dispatcher[T any] struct {
	mode     Mode
	defaults func() ExecutionContext
	logger   *slog.Logger

	mu    sync.Mutex
	sync  []weak.Pointer[Subscription[T]]
	async []weak.Pointer[Subscription[T]]
}

func newDispatcher[T any](mode Mode, defaults func() ExecutionContext, log *slog.Logger) *Dispatcher[T] {
	return &Dispatcher[T]{
		mode:     mode,
		defaults: defaults,
		logger:   log,
	}
}

// Mode returns the dispatcher's delivery mode.
func (d *Dispatcher[T]) Mode() Mode { return d.mode }

// Subscribe adds a non-owning reference to sub.
func (d *Dispatcher[T]) Subscribe(sub *Subscription[T]) {
	if sub == nil {
		return
	}
	ref := weak.Make(sub)

	d.mu.Lock()
	defer d.mu.Unlock()

	if sub.kind == KindAsync {
		d.async = append(slices.Clip(d.async), ref)
		return
	}
	d.sync = append(slices.Clip(d.sync), ref)
}

// Unsubscribe removes sub, matching by identity. Unknown subscriptions are ignored.
func (d *Dispatcher[T]) Unsubscribe(sub *Subscription[T]) {
	if sub == nil {
		return
	}
	ref := weak.Make(sub)
	match := func(p weak.Pointer[Subscription[T]]) bool { return p == ref }

	d.mu.Lock()
	defer d.mu.Unlock()

	if sub.kind == KindAsync {
		d.async = slices.DeleteFunc(slices.Clone(d.async), match)
		return
	}
	d.sync = slices.DeleteFunc(slices.Clone(d.sync), match)
}

// RegisteredDelegateCount returns the number of live subscriptions,
// reaping reclaimed and closed ones first.
func (d *Dispatcher[T]) RegisteredDelegateCount() int {
	syncSubs, asyncSubs := d.snapshot()
	return len(syncSubs) + len(asyncSubs)
}

// CallHandlers delivers msg to every live subscription.
//
// Sync subscriptions run first, in subscription order; the first error
// stops the pass and is returned. Async subscriptions then run
// concurrently and CallHandlers waits for all of them, returning their
// errors joined. A cancelled ctx stops sync delivery with ctx.Err().
func (d *Dispatcher[T]) CallHandlers(ctx context.Context, msg T) error {
	syncSubs, asyncSubs := d.snapshot()

	for _, sub := range syncSubs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.deliver(ctx, sub, msg); err != nil {
			return err
		}
	}

	if len(asyncSubs) == 0 {
		return nil
	}

	futures := make([]*async.ExecFuture, 0, len(asyncSubs))
	for _, sub := range asyncSubs {
		futures = append(futures, async.Exec(ctx, sub, func(ctx context.Context, sub *Subscription[T]) error {
			return d.deliver(ctx, sub, msg)
		}))
	}
	return async.AwaitAll(futures...)
}

func (d *Dispatcher[T]) deliver(ctx context.Context, sub *Subscription[T], msg T) error {
	call := func(ctx context.Context) error { return sub.invoke(ctx, msg) }

	if d.mode == Immediate {
		return call(ctx)
	}

	ec := sub.exec
	if ec == nil && d.defaults != nil {
		ec = d.defaults()
	}
	if ec == nil {
		d.logger.DebugContext(ctx, "no execution context, delivery skipped",
			logger.Message(reflect.TypeFor[T]().String()),
			logger.SubscriptionID(sub.id),
		)
		return nil
	}
	return ec.Run(ctx, call)
}

// snapshot returns the live subscriptions and drops dead references from
// the stored lists.
func (d *Dispatcher[T]) snapshot() (syncSubs, asyncSubs []*Subscription[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var reaped int
	syncSubs, d.sync, reaped = resolveLive(d.sync)
	n := reaped
	asyncSubs, d.async, reaped = resolveLive(d.async)
	n += reaped

	if n > 0 {
		d.logger.Debug("reaped stale subscriptions",
			logger.Message(reflect.TypeFor[T]().String()),
			logger.Count("reaped", n),
		)
	}
	return syncSubs, asyncSubs
}

func resolveLive[T any](refs []weak.Pointer[Subscription[T]]) ([]*Subscription[T], []weak.Pointer[Subscription[T]], int) {
	if len(refs) == 0 {
		return nil, refs, 0
	}

	live := make([]*Subscription[T], 0, len(refs))
	for _, ref := range refs {
		if sub := ref.Value(); sub != nil && !sub.Closed() {
			live = append(live, sub)
		}
	}

	reaped := len(refs) - len(live)
	if reaped == 0 {
		return live, refs, 0
	}

	kept := make([]weak.Pointer[Subscription[T]], 0, len(live))
	for _, sub := range live {
		kept = append(kept, weak.Make(sub))
	}
	return live, kept, reaped
}
