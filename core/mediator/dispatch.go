package mediator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mediator/core/container"
	"github.com/dmitrymomot/mediator/core/logger"
)

// Send dispatches req to its single RequestHandler[Req, Res] through the
// matching behaviors and returns the handler's result. Handler and
// behavior errors are returned unmodified.
//
// When Req is an interface type the handler is chosen by the runtime type
// of req, so Send[User](ctx, m, any(GetUser{})) reaches the
// RequestHandler[GetUser, User].
//
// Example:
//
//	user, err := mediator.Send[User](ctx, m, GetUser{ID: "42"})
func Send[Res, Req any](ctx context.Context, m *Mediator, req Req) (Res, error) {
	var zero Res

	msgType, err := typeOfMessage(req)
	if err != nil {
		return zero, err
	}

	handle, err := requestHandlerFor[Req, Res](m.resolver, msgType)
	if err != nil {
		return zero, notFound(msgType, err)
	}

	behaviors, err := m.behaviors(msgType)
	if err != nil {
		return zero, err
	}

	ctx = m.begin(ctx, msgType, KindRequest)
	terminal := func(ctx context.Context) (any, error) {
		return m.invoke(ctx, msgType, func(ctx context.Context) (any, error) {
			return handle(ctx, req)
		})
	}

	out, err := m.run(ctx, msgType, chain(behaviors, req, terminal))
	if err != nil {
		return zero, err
	}
	return unbox[Res](msgType, out)
}

// Publish delivers n to every NotificationHandler[N] concurrently and
// waits for all of them. Zero handlers is not an error. Failures are
// wrapped with ErrHandlerFailed and joined; cancellation errors are
// returned as they are.
//
// Ad-hoc subscribers in a notify.Hub are reached only when a dispatcher
// trigger is registered for N (see RegisterDispatcherTrigger).
func Publish[N any](ctx context.Context, m *Mediator, n N) error {
	msgType, err := typeOfMessage(n)
	if err != nil {
		return err
	}

	handlers, err := notificationHandlersFor[N](m.resolver, msgType)
	if err != nil {
		return fmt.Errorf("resolve notification handlers for %s: %w", messageName(msgType), err)
	}

	behaviors, err := m.behaviors(msgType)
	if err != nil {
		return err
	}

	ctx = m.begin(ctx, msgType, KindNotification)
	terminal := func(ctx context.Context) (any, error) {
		if len(handlers) == 0 {
			m.logger.DebugContext(ctx, "no notification handlers", logger.Message(messageName(msgType)))
			return Unit{}, nil
		}
		return Unit{}, fanOut(ctx, m, msgType, handlers, n)
	}

	_, err = m.run(ctx, msgType, chain(behaviors, n, terminal))
	return err
}

// Stream returns a lazy sequence produced by the StreamHandler[Req, Item]
// for req, wrapped in the matching stream behaviors. Every range over the
// result runs the pipeline again.
//
// Items are pulled on demand. If ctx is done the sequence yields ctx.Err()
// once and stops pulling from the handler. Handler errors are passed
// through as they are yielded; the consumer decides whether to continue.
//
// Example:
//
//	for n, err := range mediator.Stream[int](ctx, m, CountTo{N: 3}) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(n)
//	}
func Stream[Item, Req any](ctx context.Context, m *Mediator, req Req) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		var zero Item

		msgType, err := typeOfMessage(req)
		if err != nil {
			yield(zero, err)
			return
		}

		handle, err := streamHandlerFor[Req, Item](m.resolver, msgType)
		if err != nil {
			yield(zero, notFound(msgType, err))
			return
		}

		behaviors, err := m.streamBehaviors(msgType)
		if err != nil {
			yield(zero, err)
			return
		}

		ctx := m.begin(ctx, msgType, KindStream)
		terminal := func(ctx context.Context) iter.Seq2[any, error] {
			return handle(ctx, req)
		}

		emit := func(v any, err error) bool {
			if err != nil {
				return yield(zero, err)
			}
			item, ok := v.(Item)
			if !ok && v != nil {
				return yield(zero, fmt.Errorf("%w: %s yielded %T", ErrUnexpectedResult, messageName(msgType), v))
			}
			return yield(item, nil)
		}

		m.drain(ctx, msgType, func() iter.Seq2[any, error] {
			return chainStream(behaviors, req, terminal)(ctx)
		}, emit)
	}
}

func (m *Mediator) begin(ctx context.Context, msgType reflect.Type, kind Kind) context.Context {
	id := uuid.NewString()
	ctx = withMessageMeta(ctx, id, messageName(msgType), kind)

	m.logger.DebugContext(ctx, "dispatching",
		logger.Message(messageName(msgType)),
		logger.MessageKind(kind.String()),
		logger.MessageID(id),
	)
	return ctx
}

// run invokes the composed chain, converting behavior panics into errors.
func (m *Mediator) run(ctx context.Context, msgType reflect.Type, next Next) (out any, err error) {
	if m.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, m.panicked(ctx, msgType, r)
			}
		}()
	}
	return next(ctx)
}

// invoke calls a terminal handler under the configured timeout and panic policy.
func (m *Mediator) invoke(ctx context.Context, msgType reflect.Type, fn func(context.Context) (any, error)) (out any, err error) {
	if m.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.handlerTimeout)
		defer cancel()
	}
	if m.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, m.panicked(ctx, msgType, r)
			}
		}()
	}
	return fn(ctx)
}

// fanOut runs handlers concurrently, bounded by the publish limit, and
// joins their failures once all of them have returned.
func fanOut[N any](ctx context.Context, m *Mediator, msgType reflect.Type, handlers []NotificationHandler[N], n N) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	if m.publishLimit > 0 {
		g.SetLimit(m.publishLimit)
	}

	for _, h := range handlers {
		g.Go(func() error {
			_, err := m.invoke(ctx, msgType, func(ctx context.Context) (any, error) {
				return nil, h.Handle(ctx, n)
			})
			if err != nil {
				mu.Lock()
				errs = append(errs, handlerFailure(h, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		m.logger.WarnContext(ctx, "notification handlers failed",
			logger.Message(messageName(msgType)),
			logger.MessageID(MessageID(ctx)),
			logger.Count("failed", len(errs)),
			logger.Count("handlers", len(handlers)),
			logger.Errors(errs...),
		)
	}
	return errors.Join(errs...)
}

// drain pulls the composed stream and forwards items to emit. Panics raised
// by handlers or behaviors become a final error item; panics raised by the
// consumer propagate unchanged.
func (m *Mediator) drain(ctx context.Context, msgType reflect.Type, open func() iter.Seq2[any, error], emit func(any, error) bool) {
	var consuming bool
	if m.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				if consuming {
					panic(r)
				}
				emit(nil, m.panicked(ctx, msgType, r))
			}
		}()
	}

	if err := ctx.Err(); err != nil {
		consuming = true
		emit(nil, err)
		return
	}

	for v, err := range open() {
		consuming = true
		if !emit(v, err) {
			return
		}
		if err := ctx.Err(); err != nil {
			emit(nil, err)
			return
		}
		consuming = false
	}
}

func (m *Mediator) panicked(ctx context.Context, msgType reflect.Type, r any) error {
	name := messageName(msgType)
	m.logger.ErrorContext(ctx, "handler panicked",
		logger.Message(name),
		logger.MessageID(MessageID(ctx)),
		logger.Panic(r),
	)
	return fmt.Errorf("%w: %s: %v", ErrHandlerPanicked, name, r)
}

func typeOfMessage(msg any) (reflect.Type, error) {
	t := reflect.TypeOf(msg)
	if t == nil {
		return nil, ErrNilMessage
	}
	return t, nil
}

func notFound(msgType reflect.Type, err error) error {
	if errors.Is(err, container.ErrNotRegistered) {
		return fmt.Errorf("%w: %s: %w", ErrHandlerNotFound, messageName(msgType), err)
	}
	return err
}

func handlerFailure(handler any, err error) error {
	if isCancellation(err) {
		return err
	}
	return fmt.Errorf("%w: %T: %w", ErrHandlerFailed, handler, err)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func unbox[Res any](msgType reflect.Type, out any) (Res, error) {
	var zero Res
	if out == nil {
		return zero, nil
	}
	res, ok := out.(Res)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrUnexpectedResult, messageName(msgType), out)
	}
	return res, nil
}
