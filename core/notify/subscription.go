package notify

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// HandlerFunc handles a notification of type T.
type HandlerFunc[T any] func(ctx context.Context, msg T) error

// Kind distinguishes inline handlers from concurrently delivered ones.
type Kind int

const (
	// KindSync handlers run one after another, in subscription order.
	// The first failure aborts the rest of the pass.
	KindSync Kind = iota
	// KindAsync handlers run concurrently; their failures are aggregated.
	KindAsync
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Subscription is a handler registration owned by a Registry.
// Dispatchers only observe subscriptions through weak pointers.
type Subscription[T any] struct {
	id      string
	kind    Kind
	handler HandlerFunc[T]
	exec    ExecutionContext
	closed  atomic.Bool
}

func newSubscription[T any](kind Kind, handler HandlerFunc[T], exec ExecutionContext) *Subscription[T] {
	return &Subscription[T]{
		id:      uuid.NewString(),
		kind:    kind,
		handler: handler,
		exec:    exec,
	}
}

// ID returns the subscription identifier.
func (s *Subscription[T]) ID() string { return s.id }

// Kind returns how the subscription is delivered.
func (s *Subscription[T]) Kind() Kind { return s.kind }

// ExecutionContext returns the context captured at subscribe time, if any.
func (s *Subscription[T]) ExecutionContext() ExecutionContext { return s.exec }

// Closed reports whether the owning registry released the subscription.
func (s *Subscription[T]) Closed() bool { return s.closed.Load() }

func (s *Subscription[T]) close() { s.closed.Store(true) }

// invoke runs the handler, converting panics into errors and wrapping
// handler failures. Cancellation errors pass through unwrapped.
func (s *Subscription[T]) invoke(ctx context.Context, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: subscription %s: %v", ErrSubscriberPanicked, s.id, r)
		}
	}()

	if err := s.handler(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: subscription %s: %w", ErrSubscriberFailed, s.id, err)
	}
	return nil
}
